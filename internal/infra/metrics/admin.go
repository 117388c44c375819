package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(adminCommandTotal, broadcastMessagesTotal) }

var (
	adminCommandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_command_total",
			Help: "Tracks attempts to use admin commands.",
		},
		[]string{"command", "status"}, // status: 'authorized', 'unauthorized', 'usage'
	)

	broadcastMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_messages_total",
			Help: "Per-recipient broadcast deliveries.",
		},
		[]string{"status"}, // 'sent', 'failed'
	)
)

func IncAdminCommand(command, status string) {
	adminCommandTotal.WithLabelValues(norm(command), norm(status)).Inc()
}

func IncBroadcastMessage(status string) {
	broadcastMessagesTotal.WithLabelValues(norm(status)).Inc()
}
