package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		usersRegisteredTotal,
		telegramUpdatesReceivedTotal,
		telegramHandlerErrorsTotal,
	)
}

var (
	usersRegisteredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "Total number of new users registered.",
		},
	)

	telegramUpdatesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_received_total",
			Help: "Counts incoming updates by kind (command, callback, message, staff_reply).",
		},
		[]string{"kind"},
	)

	telegramHandlerErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_handler_errors_total",
			Help: "Handler errors and recovered panics in update workers.",
		},
	)
)

func IncUsersRegistered() {
	usersRegisteredTotal.Inc()
}

func IncTelegramUpdate(kind string) {
	telegramUpdatesReceivedTotal.WithLabelValues(norm(kind)).Inc()
}

func IncHandlerError() {
	telegramHandlerErrorsTotal.Inc()
}
