package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

type LedgerMetrics struct {
	OpDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	LoansCreatedTotal       *prometheus.CounterVec
	InstallmentTogglesTotal *prometheus.CounterVec
	OverdueInstallments     prometheus.Gauge
	DueSoonInstallments     prometheus.Gauge
}

var (
	HTTP = HTTPMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_ledger_http_requests_total",
				Help: "Total number of HTTP requests received.",
			},
			[]string{"method", "path", "code"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_ledger_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "code"},
		),
	}

	Ledger = LedgerMetrics{
		OpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_ledger_store_op_duration_seconds",
				Help:    "Histogram of ledger store operation latencies.",
				Buckets: []float64{.000001, .00001, .0001, .001, .01, .1},
			},
			[]string{"op", "status"},
		),
	}

	Business = BusinessMetrics{
		LoansCreatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_ledger_loans_created_total",
				Help: "Total number of loan creation attempts by outcome.",
			},
			[]string{"status"},
		),
		InstallmentTogglesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_ledger_installment_toggles_total",
				Help: "Total number of installment settlement toggles by outcome.",
			},
			[]string{"status"},
		),
		OverdueInstallments: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "loan_ledger_overdue_installments",
				Help: "Unsettled installments currently past their due date.",
			},
		),
		DueSoonInstallments: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "loan_ledger_due_soon_installments",
				Help: "Unsettled installments due within the next seven days.",
			},
		),
	}
)

func RecordHTTPRequest(method, path, code string, duration time.Duration) {
	HTTP.RequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTP.RequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

func RecordLedgerOp(op, status string, duration time.Duration) {
	Ledger.OpDuration.WithLabelValues(op, status).Observe(duration.Seconds())
}

func RecordLoanCreation(status string) {
	Business.LoansCreatedTotal.WithLabelValues(status).Inc()
}

func RecordInstallmentToggle(status string) {
	Business.InstallmentTogglesTotal.WithLabelValues(status).Inc()
}

func SetOverdueInstallments(count int) {
	Business.OverdueInstallments.Set(float64(count))
}

func SetDueSoonInstallments(count int) {
	Business.DueSoonInstallments.Set(float64(count))
}
