package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/mosala-erp/payroll-backend-go/internal/config"
	appHTTP "github.com/mosala-erp/payroll-backend-go/internal/handler/http"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/database"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/jwt"
	"github.com/mosala-erp/payroll-backend-go/internal/repository/postgresql"
	payrollService "github.com/mosala-erp/payroll-backend-go/internal/service/payroll"
	periodService "github.com/mosala-erp/payroll-backend-go/internal/service/period"
	"github.com/mosala-erp/payroll-backend-go/internal/service/posting"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "payroll-backend"),
	)

	periodRepo := postgresql.NewPeriodRepository(db)
	payslipRepo := postgresql.NewPayslipRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	ledgerRepo := postgresql.NewLedgerRepository(db)
	refdataRepo := postgresql.NewRefdataRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	engine := posting.NewEngine(db, logger, cfg.Payroll.DefaultBankAccount, periodRepo, payslipRepo, ledgerRepo)
	payslipSvc := payrollService.NewPayslipService(db, payrollService.Config{
		LedgerCurrency:     cfg.Payroll.LedgerCurrency,
		HoursPerDay:        cfg.Payroll.HoursPerDay,
		OvertimeMultiplier: cfg.Payroll.OvertimeMultiplier,
	}, periodRepo, payslipRepo, employeeRepo, refdataRepo)
	periodSvc := periodService.NewPeriodService(db, periodRepo, payslipRepo, engine)

	periodHandler := appHTTP.NewPeriodHandler(periodSvc)
	payslipHandler := appHTTP.NewPayslipHandler(payslipSvc)

	router := appHTTP.NewRouter(jwtService, periodHandler, payslipHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
