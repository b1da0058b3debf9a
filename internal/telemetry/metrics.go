package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ScansTotal counts completed scans per backend
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netraptor",
			Name:      "scans_total",
			Help:      "Total number of scans run, by backend",
		},
		[]string{"backend"},
	)

	// NetworksDiscovered holds the size of the reconciled inventory
	NetworksDiscovered = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "netraptor",
			Name:      "networks_discovered",
			Help:      "Number of distinct networks in the current inventory",
		},
	)

	// SubprocessTimeouts counts external tools killed for exceeding their ceiling
	SubprocessTimeouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netraptor",
			Name:      "subprocess_timeouts_total",
			Help:      "Total number of subprocesses killed on timeout",
		},
		[]string{"tool"},
	)

	// AttacksTotal counts attack runs by kind and outcome
	AttacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netraptor",
			Name:      "attacks_total",
			Help:      "Total number of attack operations, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// MonitorStrategyTotal counts monitor-mode strategy attempts
	MonitorStrategyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netraptor",
			Name:      "monitor_strategy_total",
			Help:      "Monitor mode negotiation attempts, by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "netraptor",
			Name:      "operation_duration_seconds",
			Help:      "Wall-clock duration of session operations",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 900, 3600},
		},
		[]string{"operation"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// InitMetrics registers all metrics with the global Prometheus registry.
// It is idempotent.
func InitMetrics() {
	once.Do(func() {
		// Errors are ignored so a pre-populated registry does not panic
		prometheus.DefaultRegisterer.Register(ScansTotal)
		prometheus.DefaultRegisterer.Register(NetworksDiscovered)
		prometheus.DefaultRegisterer.Register(SubprocessTimeouts)
		prometheus.DefaultRegisterer.Register(AttacksTotal)
		prometheus.DefaultRegisterer.Register(MonitorStrategyTotal)
		prometheus.DefaultRegisterer.Register(OperationDuration)
	})
}

// Outcome maps a boolean to an outcome label.
func Outcome(ok bool) string {
	if ok {
		return OutcomeSuccess
	}
	return OutcomeFailure
}
