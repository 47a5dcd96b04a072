package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes engine-level prometheus counters.
type Metrics struct {
	paymentsRecorded *prometheus.CounterVec
	paymentsDeleted  prometheus.Counter
	receiptsIssued   *prometheus.CounterVec
	bulkIssueItems   *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		paymentsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shukin_payments_recorded_total",
			Help: "Payments recorded, by payment kind.",
		}, []string{"kind"}),
		paymentsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shukin_payments_deleted_total",
			Help: "Payments deleted together with their allocations.",
		}),
		receiptsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shukin_receipts_issued_total",
			Help: "Receipts issued, by receipt kind.",
		}, []string{"kind"}),
		bulkIssueItems: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shukin_bulk_issue_items_total",
			Help: "Bulk receipt issuance item outcomes.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) RecordPayment(kind string) {
	if m == nil {
		return
	}
	m.paymentsRecorded.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordPaymentDeleted() {
	if m == nil {
		return
	}
	m.paymentsDeleted.Inc()
}

func (m *Metrics) RecordReceiptIssued(kind string) {
	if m == nil {
		return
	}
	m.receiptsIssued.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordBulkIssueItem(outcome string) {
	if m == nil {
		return
	}
	m.bulkIssueItems.WithLabelValues(outcome).Inc()
}
