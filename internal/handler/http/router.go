package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mosala-erp/payroll-backend-go/internal/handler/http/middleware"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/jwt"
)

func NewRouter(jwtService jwt.Service, periodHandler PeriodHandler, payslipHandler PayslipHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-backend"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/payroll", func(r chi.Router) {
		r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
		r.Use(middleware.AuthRequired(jwtService))

		r.Route("/periods", func(r chi.Router) {
			r.Post("/", periodHandler.Create)
			r.Get("/", periodHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", periodHandler.Get)

				// Lifecycle
				r.Post("/lock", periodHandler.Lock)
				r.Post("/unlock", periodHandler.Unlock)
				r.Post("/post", periodHandler.Post)
				r.Post("/reverse", periodHandler.Reverse)
				r.Post("/settle", periodHandler.Settle)
				r.Get("/audit", periodHandler.Audit)

				// Payslips and inputs
				r.Post("/generate", payslipHandler.Generate)
				r.Get("/preview", payslipHandler.Preview)
				r.Get("/summary", payslipHandler.Summary)
				r.Put("/attendance", payslipHandler.UpsertAttendance)
				r.Put("/variables", payslipHandler.ReplaceVariables)
			})
		})

		r.Route("/payslips", func(r chi.Router) {
			r.Get("/{id}", payslipHandler.Get)
			r.Post("/{id}/recalculate", payslipHandler.Recalculate)
		})
	})

	return r
}
