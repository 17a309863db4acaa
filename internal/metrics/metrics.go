package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Taps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "economy_taps_total",
			Help: "Taps that awarded coins",
		},
	)
	CoinsEarned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "economy_coins_earned_total",
			Help: "Coins credited by taps and rewards",
		},
	)
	Claims = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_claims_total",
			Help: "Successful timed reward claims",
		},
		[]string{"reward"},
	)
	Rejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_rejections_total",
			Help: "Operations rejected without a state change",
		},
		[]string{"reason"},
	)
	Purchases = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_purchases_total",
			Help: "Robot and upgrade purchases",
		},
		[]string{"item"},
	)
	Recoveries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "economy_energy_recoveries_total",
			Help: "Energy refills after the recovery window elapsed",
		},
	)
	KVOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kv_operations_total",
			Help: "Key-value store operations by backend, op and result",
		},
		[]string{"backend", "op", "result"},
	)
	Sessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Users with a live energy scheduler job",
		},
	)
)

func init() {
	prometheus.MustRegister(Taps)
	prometheus.MustRegister(CoinsEarned)
	prometheus.MustRegister(Claims)
	prometheus.MustRegister(Rejections)
	prometheus.MustRegister(Purchases)
	prometheus.MustRegister(Recoveries)
	prometheus.MustRegister(KVOps)
	prometheus.MustRegister(Sessions)
}
