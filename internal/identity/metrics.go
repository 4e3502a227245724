package identity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cryptodefi"

var authAttempts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "identity",
		Name:      "auth_attempts_total",
		Help:      "Login and signup attempts by outcome",
	},
	[]string{"operation", "result"},
)

func recordAuthAttempt(operation, result string) {
	authAttempts.WithLabelValues(operation, result).Inc()
}
