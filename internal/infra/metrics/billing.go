package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(debitsTotal, debitedCentsTotal) }

var debitsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "billing_debits_total",
		Help: "Balance debits, labeled by outcome ('success', 'insufficient', 'error').",
	},
	[]string{"outcome"},
)

var debitedCentsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "billing_debited_cents_total",
		Help: "Total cents successfully debited from user balances.",
	},
)

func IncDebit(outcome string) {
	debitsTotal.WithLabelValues(norm(outcome)).Inc()
}

func AddDebitedCents(cents int64) { debitedCentsTotal.Add(float64(cents)) }
