package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(blockedCacheLookupsTotal, blockedCacheWritesTotal) }

var (
	// result is hit, miss or error. A read error falls through to the store
	// and is counted once as error, not as miss.
	blockedCacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_blocked_cache_lookups_total",
			Help: "Blocked-flag lookups served by the redis cache, by result.",
		},
		[]string{"result"},
	)

	// op is fill (miss path) or refresh (after a block change).
	// result is stored, skipped (a newer value was already cached) or error.
	blockedCacheWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_blocked_cache_writes_total",
			Help: "Writes to the blocked-flag cache, by operation and result.",
		},
		[]string{"op", "result"},
	)
)

func IncBlockedCacheLookup(result string) {
	blockedCacheLookupsTotal.WithLabelValues(norm(result)).Inc()
}

func IncBlockedCacheWrite(op, result string) {
	blockedCacheWritesTotal.WithLabelValues(norm(op), norm(result)).Inc()
}
