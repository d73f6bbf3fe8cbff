package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics exposes application-level counters for the batch pipelines.
type Metrics struct {
	BatchesTotal  *prometheus.CounterVec
	ItemsAccepted *prometheus.CounterVec
	ItemsRejected *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		BatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "compensa_batches_total",
			Help: "Processed compensation batches per regime.",
		}, []string{"regime"}),
		ItemsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "compensa_items_accepted_total",
			Help: "Batch items priced successfully per regime.",
		}, []string{"regime"}),
		ItemsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "compensa_items_rejected_total",
			Help: "Batch items rejected with a reason per regime.",
		}, []string{"regime"}),
	}
}

func register(m *Metrics) error {
	for _, c := range []prometheus.Collector{m.BatchesTotal, m.ItemsAccepted, m.ItemsRejected} {
		if err := prometheus.Register(c); err != nil {
			return err
		}
	}
	return nil
}

var Module = fx.Module("metrics",
	fx.Provide(New),
	fx.Invoke(register),
)
