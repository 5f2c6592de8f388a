package payslip

import (
	"time"

	"github.com/shopspring/decimal"
)

type LineResponse struct {
	Code         LineCode         `json:"code"`
	Label        string           `json:"label"`
	Amount       decimal.Decimal  `json:"amount"`
	BaseAmount   *decimal.Decimal `json:"base_amount,omitempty"`
	Position     int              `json:"position"`
	CostCenterID *string          `json:"cost_center_id,omitempty"`
	Meta         map[string]any   `json:"meta,omitempty"`
}

type PayslipResponse struct {
	ID           string          `json:"id"`
	Ref          string          `json:"ref"`
	PeriodID     string          `json:"period_id"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name,omitempty"`
	Gross        decimal.Decimal `json:"gross"`
	Net          decimal.Decimal `json:"net"`
	Currency     string          `json:"currency"`
	Locked       bool            `json:"locked"`
	Lines        []LineResponse  `json:"lines"`
	CreatedAt    time.Time       `json:"created_at"`
}

type GenerateResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type PreviewRow struct {
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    string          `json:"employee_name"`
	Gross           decimal.Decimal `json:"gross"`
	Net             decimal.Decimal `json:"net"`
	EmployerCharges decimal.Decimal `json:"employer_charges"`
	Lines           []LineResponse  `json:"lines"`
}

type PreviewResponse struct {
	Count   int          `json:"count"`
	Results []PreviewRow `json:"results"`
}

type SummaryResponse struct {
	EmployeeCount        int                          `json:"employee_count"`
	TotalGross           decimal.Decimal              `json:"total_gross"`
	TotalNet             decimal.Decimal              `json:"total_net"`
	TotalEmployerCharges decimal.Decimal              `json:"total_employer_charges"`
	TotalsByCode         map[LineCode]decimal.Decimal `json:"totals_by_code"`
}

func ToResponse(p Payslip) PayslipResponse {
	resp := PayslipResponse{
		ID:         p.ID,
		Ref:        p.Ref,
		PeriodID:   p.PeriodID,
		EmployeeID: p.EmployeeID,
		Gross:      p.Gross,
		Net:        p.Net,
		Currency:   p.Currency,
		Locked:     p.Locked,
		CreatedAt:  p.CreatedAt,
	}
	if p.EmployeeName != nil {
		resp.EmployeeName = *p.EmployeeName
	}
	for _, l := range p.Lines {
		resp.Lines = append(resp.Lines, LineResponse{
			Code:         l.Code,
			Label:        l.Label,
			Amount:       l.Amount,
			BaseAmount:   l.BaseAmount,
			Position:     l.Position,
			CostCenterID: l.CostCenterID,
			Meta:         l.Meta,
		})
	}
	return resp
}
