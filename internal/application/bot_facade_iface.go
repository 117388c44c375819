package application

import (
	"telegram-support-relay/internal/infra/worker"
)

// ---- small interfaces to decouple the facade from concrete infra ----

// JobSubmitter queues background work. *worker.Pool satisfies it.
type JobSubmitter interface {
	Submit(task worker.Task) error
}

// Translator renders texts in the configured language.
type Translator interface {
	T(key string, args ...interface{}) string
}

var _ JobSubmitter = (*worker.Pool)(nil)
