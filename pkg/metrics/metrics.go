package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// FeedSessionsActive tracks the number of live feed sessions.
var FeedSessionsActive = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "paystream_feed_sessions_active",
		Help: "Number of currently connected transfer feed sessions",
	},
)

// FeedTicks counts poll cycles by outcome (unchanged, changed, error).
var FeedTicks = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "paystream_feed_ticks_total",
		Help: "Total feed poll cycles by outcome",
	},
	[]string{"outcome"},
)

// FeedConsecutiveFailures reports the highest consecutive fetch-failure
// streak across sessions. Failures are invisible to clients, so this is
// the only place backend degradation shows up.
var FeedConsecutiveFailures = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "paystream_feed_consecutive_fetch_failures",
		Help: "Consecutive failed fetches for the worst-off feed session",
	},
)

// FeedUpdatesEmitted counts update events written to clients.
var FeedUpdatesEmitted = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "paystream_feed_updates_emitted_total",
		Help: "Total update events emitted across all feed sessions",
	},
)

func init() {
	prometheus.MustRegister(FeedSessionsActive, FeedTicks, FeedConsecutiveFailures, FeedUpdatesEmitted)
}
