package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(backgroundJobsTotal) }

var backgroundJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "background_jobs_total",
		Help: "Background jobs run on the worker pool, labeled by kind and status.",
	},
	[]string{"kind", "status"}, // kind: 'broadcast'; status: 'completed', 'failed', 'rejected'
)

func IncBackgroundJob(kind, status string) {
	backgroundJobsTotal.WithLabelValues(norm(kind), norm(status)).Inc()
}
