package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestBotMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBotMetrics(reg)
	m.ObserveInbound("welcome", "ok")
	m.ObserveOutbound("sent")
	m.ObserveClassifierLatency(0.25)
}

func TestBotMetricsNilSafe(t *testing.T) {
	var m *BotMetrics
	m.ObserveInbound("welcome", "ok")
	m.ObserveOutbound("sent")
	m.ObserveClassifierLatency(0.1)
}
