package automod

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var checkDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "automod_check_duration_sec",
	Help: "Total duration of checking a single message",
})

var checkErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_check_errors",
	Help: "Number of message checks which failed",
})

var verdictCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_verdicts",
	Help: "Number of checked messages, by resulting action",
}, []string{"action"})

var ruleHitCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_rule_hits",
	Help: "Number of non-empty rule results, by rule and result kind",
}, []string{"rule", "kind"})

var pointsGranted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_points_granted",
	Help: "Total offense points granted above the minimum",
})

var offendingUsers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "automod_offending_users",
	Help: "Number of users currently holding offense points",
})
