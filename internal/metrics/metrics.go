// Package metrics публикует счётчики Prometheus для /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EntryOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "logbook",
		Name:      "entry_operations_total",
		Help:      "Entry create/edit/approve calls by outcome.",
	}, []string{"op", "result"})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "logbook",
		Name:      "login_attempts_total",
		Help:      "Login attempts by outcome.",
	}, []string{"result"})

	SessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "logbook",
		Name:      "sessions_expired_total",
		Help:      "Sessions cleared by the inactivity timeout.",
	})
)

// Result превращает ошибку операции в значение метки.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
