package feed

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/paystream/paystream/pkg/metrics"
)

// Sink receives encoded events for one client connection. Send must report
// an error once the underlying transport is gone so the session can stop.
type Sink interface {
	Send(data []byte) error
}

// Session drives one client's subscription: it owns the tracked account
// set, the last observed snapshot, and the poll loop. Ticks run strictly
// sequentially; a new fetch never starts while the previous tick is still
// being processed.
type Session struct {
	accountIDs []string
	interval   time.Duration
	fetcher    Fetcher
	sink       Sink
	logger     *zap.Logger

	snapshot Snapshot
	failures int
}

// NewSession builds a session for the given tracked accounts. The account
// set is copied; callers may not grow a session's filter after creation.
func NewSession(fetcher Fetcher, sink Sink, accountIDs []string, interval time.Duration, logger *zap.Logger) *Session {
	tracked := make([]string, len(accountIDs))
	copy(tracked, accountIDs)
	return &Session{
		accountIDs: tracked,
		interval:   interval,
		fetcher:    fetcher,
		sink:       sink,
		logger:     logger,
		snapshot:   make(Snapshot),
	}
}

// Run emits the connected event, then polls until ctx is cancelled or the
// sink reports the client gone. Fetch failures are swallowed: the tick
// emits nothing, keeps the previous snapshot, and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	connected, err := EncodeConnected()
	if err != nil {
		return err
	}
	if err := s.sink.Send(connected); err != nil {
		return err
	}

	metrics.FeedSessionsActive.Inc()
	defer metrics.FeedSessionsActive.Dec()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("feed session cancelled", zap.Strings("accounts", s.accountIDs))
			return nil
		case <-ticker.C:
			// The cancellation signal wins over a simultaneously ready tick.
			select {
			case <-ctx.Done():
				s.logger.Debug("feed session cancelled", zap.Strings("accounts", s.accountIDs))
				return nil
			default:
			}
			if err := s.tick(ctx); err != nil {
				return err
			}
		}
	}
}

// tick runs one fetch→detect→emit cycle. A non-nil return means the client
// connection is unusable and the session must stop; backend errors are not
// propagated.
func (s *Session) tick(ctx context.Context) error {
	fetched, err := s.fetcher.Fetch(ctx, s.accountIDs)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.failures++
		metrics.FeedTicks.WithLabelValues("error").Inc()
		metrics.FeedConsecutiveFailures.Set(float64(s.failures))
		s.logger.Warn("feed fetch failed, retrying next tick",
			zap.Int("consecutive_failures", s.failures),
			zap.Error(err))
		return nil
	}
	if s.failures > 0 {
		s.failures = 0
		metrics.FeedConsecutiveFailures.Set(0)
	}

	result := Detect(s.snapshot, fetched)
	s.snapshot = result.Snapshot

	if !result.Changed {
		metrics.FeedTicks.WithLabelValues("unchanged").Inc()
		return nil
	}
	metrics.FeedTicks.WithLabelValues("changed").Inc()

	payload, err := EncodeUpdate(result.Transfers)
	if err != nil {
		s.logger.Error("failed to encode update event", zap.Error(err))
		return nil
	}
	if err := s.sink.Send(payload); err != nil {
		return err
	}
	metrics.FeedUpdatesEmitted.Inc()
	return nil
}
