package blogcms

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// appMetrics holds the counters the handlers update. HTTP request metrics
// come from the echoprometheus middleware on the same registry.
type appMetrics struct {
	logins  *prometheus.CounterVec
	uploads *prometheus.CounterVec
	posts   *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *appMetrics {
	m := &appMetrics{
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blogcms",
				Name:      "logins_total",
				Help:      "Login attempts by result (success, failure, throttled, error)",
			},
			[]string{"result"},
		),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blogcms",
				Name:      "image_uploads_total",
				Help:      "Feature image uploads by result (success, rejected, error)",
			},
			[]string{"result"},
		),
		posts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blogcms",
				Name:      "content_changes_total",
				Help:      "Post and category mutations by kind and operation",
			},
			[]string{"kind", "op"},
		),
	}
	reg.MustRegister(
		m.logins,
		m.uploads,
		m.posts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *appMetrics) login(result string) {
	m.logins.WithLabelValues(result).Inc()
}

func (m *appMetrics) upload(result string) {
	m.uploads.WithLabelValues(result).Inc()
}

func (m *appMetrics) change(kind, op string) {
	m.posts.WithLabelValues(kind, op).Inc()
}
