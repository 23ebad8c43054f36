package chat

import "github.com/prometheus/client_golang/prometheus"

var chatTurnsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cityclinic",
		Subsystem: "chat",
		Name:      "turns_total",
		Help:      "Chat turns by outcome",
	},
	[]string{"outcome"},
)

var llmLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "cityclinic",
		Subsystem: "chat",
		Name:      "llm_latency_seconds",
		Help:      "Latency of reasoning service calls",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"status"},
)

var bookingsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cityclinic",
		Subsystem: "chat",
		Name:      "bookings_total",
		Help:      "Booking commands by persistence result",
	},
	[]string{"status"},
)

func init() {
	prometheus.MustRegister(chatTurnsTotal)
	prometheus.MustRegister(llmLatency)
	prometheus.MustRegister(bookingsTotal)
}
