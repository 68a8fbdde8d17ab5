package metrics

import "github.com/prometheus/client_golang/prometheus"

// BotMetrics exposes counters/histograms for the conversation loop.
type BotMetrics struct {
	inboundTotal      *prometheus.CounterVec
	outboundTotal     *prometheus.CounterVec
	classifierLatency prometheus.Histogram
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "providoor",
			Subsystem: "bot",
			Name:      "inbound_total",
			Help:      "Total inbound messages by dispatch branch",
		}, []string{"branch", "status"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "providoor",
			Subsystem: "bot",
			Name:      "outbound_total",
			Help:      "Total outbound WhatsApp sends",
		}, []string{"status"}),
		classifierLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "providoor",
			Subsystem: "bot",
			Name:      "classifier_latency_seconds",
			Help:      "Latency of intent classification calls",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.outboundTotal, m.classifierLatency)
	return m
}

func (m *BotMetrics) ObserveInbound(branch, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(branch, status).Inc()
}

func (m *BotMetrics) ObserveOutbound(status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status).Inc()
}

func (m *BotMetrics) ObserveClassifierLatency(seconds float64) {
	if m == nil {
		return
	}
	m.classifierLatency.Observe(seconds)
}
