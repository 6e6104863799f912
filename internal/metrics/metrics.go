package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Config labels every metric with the emitting service and environment.
type Config struct {
	ServiceName string
	Environment string
}

// BillingMetrics captures low-cardinality counters for the fiscal pipeline.
type BillingMetrics struct {
	invoicesApproved  *prometheus.CounterVec
	invoicesRejected  prometheus.Counter
	billingRunInvoice prometheus.Counter
	priceUpdates      prometheus.Counter
}

var (
	billingMetricsOnce sync.Once
	billingMetrics     *BillingMetrics
)

func Billing() *BillingMetrics {
	return BillingWithConfig(Config{})
}

func BillingWithConfig(cfg Config) *BillingMetrics {
	billingMetricsOnce.Do(func() {
		billingMetrics = newBillingMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return billingMetrics
}

func ResetBillingMetricsForTest() {
	billingMetricsOnce = sync.Once{}
	billingMetrics = nil
}

func newBillingMetrics(registerer prometheus.Registerer, cfg Config) *BillingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "elevarapp"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	invoicesApproved := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "elevarapp_invoices_approved_total",
			Help:        "Total invoices approved by the fiscal authority.",
			ConstLabels: constLabels,
		},
		[]string{"type"},
	)

	invoicesRejected := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "elevarapp_invoices_rejected_total",
			Help:        "Total invoices rejected by the fiscal authority.",
			ConstLabels: constLabels,
		},
	)

	billingRunInvoice := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "elevarapp_billing_run_invoices_total",
			Help:        "Total provisional invoices produced by mass billing runs.",
			ConstLabels: constLabels,
		},
	)

	priceUpdates := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "elevarapp_price_updates_total",
			Help:        "Total equipment prices changed by mass revisions.",
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(
		invoicesApproved,
		invoicesRejected,
		billingRunInvoice,
		priceUpdates,
	)

	return &BillingMetrics{
		invoicesApproved:  invoicesApproved,
		invoicesRejected:  invoicesRejected,
		billingRunInvoice: billingRunInvoice,
		priceUpdates:      priceUpdates,
	}
}

func (m *BillingMetrics) IncInvoiceApproved(invoiceType string) {
	if m == nil {
		return
	}
	m.invoicesApproved.WithLabelValues(invoiceType).Inc()
}

func (m *BillingMetrics) IncInvoiceRejected() {
	if m == nil {
		return
	}
	m.invoicesRejected.Inc()
}

func (m *BillingMetrics) AddBillingRunInvoices(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.billingRunInvoice.Add(float64(count))
}

func (m *BillingMetrics) AddPriceUpdates(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.priceUpdates.Add(float64(count))
}
