package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		forwardsTotal,
		staffRepliesTotal,
		correlationRecordFailuresTotal,
		blockedRejectionsTotal,
	)
}

var (
	forwardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_forwards_total",
			Help: "User messages handled by the routing engine, by category and outcome.",
		},
		[]string{"category", "outcome"},
	)

	staffRepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_staff_replies_total",
			Help: "Staff replies handled by the routing engine, by outcome.",
		},
		[]string{"outcome"},
	)

	// A send succeeded but the correlation entry was not stored; replies to
	// that forwarded message cannot be routed back.
	correlationRecordFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_correlation_record_failures_total",
			Help: "Forwarded messages whose correlation entry could not be recorded.",
		},
	)

	blockedRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_blocked_rejections_total",
			Help: "Interactions rejected because the user is blocked.",
		},
		[]string{"surface"}, // 'start', 'menu', 'category', 'message'
	)
)

func IncForward(category, outcome string) {
	if category == "" {
		category = "none"
	}
	forwardsTotal.WithLabelValues(norm(category), norm(outcome)).Inc()
}

func IncStaffReply(outcome string) {
	staffRepliesTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncCorrelationRecordFailure() {
	correlationRecordFailuresTotal.Inc()
}

func IncBlockedRejection(surface string) {
	blockedRejectionsTotal.WithLabelValues(norm(surface)).Inc()
}
