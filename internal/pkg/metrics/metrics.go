package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PayslipsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payroll_payslips_generated_total",
		Help: "Payslips created by the generation engine.",
	})

	PeriodTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_period_transitions_total",
		Help: "Period status transitions by target status.",
	}, []string{"to"})

	LedgerEntriesPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_ledger_entries_total",
		Help: "Ledger entries appended by source type.",
	}, []string{"source_type"})

	UnbalancedEntries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payroll_unbalanced_entries_total",
		Help: "Posting attempts rejected because debits and credits did not match.",
	})

	AuditMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payroll_audit_mismatches_total",
		Help: "Account level mismatches found by period audits.",
	})
)
