package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeGenerators = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "cryptodefi",
			Subsystem: "feed",
			Name:      "active_generators",
			Help:      "Number of running feed generators",
		},
		[]string{"feed"},
	)

	feedTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cryptodefi",
			Subsystem: "feed",
			Name:      "ticks_total",
			Help:      "Total number of feed update cycles",
		},
		[]string{"feed"},
	)
)
