package catalog

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Operations *prometheus.CounterVec
	Products   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_operations_total",
				Help: "Catalog manager operations by outcome",
			},
			[]string{"op", "result"},
		),
		Products: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Products in the catalog after the last operation",
		}),
	}
	reg.MustRegister(m.Operations, m.Products)
	return m
}

func (m *Metrics) observe(op string, err error, size int) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, Kind(err)).Inc()
	if err == nil {
		m.Products.Set(float64(size))
	}
}
