package api

import (
	"github.com/prometheus/client_golang/prometheus"          // Metric types
	"github.com/prometheus/client_golang/prometheus/promauto" // Auto-registered metrics
)

// mutations counts ledger writes by kind and outcome
var mutations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "moneybase",
	Name:      "ledger_mutations_total",
	Help:      "Wallet and operation mutations by kind and result",
}, []string{"kind", "result"})

func countMutation(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	mutations.WithLabelValues(kind, result).Inc()
}
