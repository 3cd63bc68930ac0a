package service

import (
	"context"
	"sync"
	"time"

	"github.com/boddenberg/bills-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/bills-dashboard-go/internal/port"

	"go.uber.org/zap"
)

// DefaultRealtimeEvent is the notification sent when any bill changes.
const DefaultRealtimeEvent = "bills_updated"

// Refresher runs one refresh cycle.
type Refresher interface {
	Refresh(ctx context.Context, trigger Trigger) error
}

// RealtimeListener turns push notifications into refresh cycles. Every
// event starts exactly one cycle; bursts are not coalesced.
type RealtimeListener struct {
	sub       port.EventSubscriber
	refresher Refresher
	event     string
	metrics   *observability.Metrics
	logger    *zap.Logger

	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewRealtimeListener creates a listener for event. An empty event uses
// DefaultRealtimeEvent.
func NewRealtimeListener(sub port.EventSubscriber, refresher Refresher, event string, metrics *observability.Metrics, logger *zap.Logger) *RealtimeListener {
	if event == "" {
		event = DefaultRealtimeEvent
	}
	return &RealtimeListener{
		sub:        sub,
		refresher:  refresher,
		event:      event,
		metrics:    metrics,
		logger:     logger,
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
}

// WithBackoff overrides the resubscribe delays.
func (l *RealtimeListener) WithBackoff(minDelay, maxDelay time.Duration) *RealtimeListener {
	l.minBackoff, l.maxBackoff = minDelay, maxDelay
	return l
}

// Run subscribes and dispatches events until ctx is done. Subscription
// failures and dropped connections are logged and retried; Run only
// returns once ctx ends and every dispatched refresh has finished.
func (l *RealtimeListener) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	backoff := l.minBackoff
	for {
		events, err := l.sub.Subscribe(ctx, l.event)
		if err != nil {
			l.logger.Warn("realtime subscription failed",
				zap.String("event", l.event),
				zap.Duration("retry_in", backoff),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, l.maxBackoff)
			continue
		}
		backoff = l.minBackoff

		for ev := range events {
			l.metrics.IncrRealtimeEvent(ev.Name)
			l.logger.Debug("realtime event received", zap.String("event", ev.Name))
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := l.refresher.Refresh(ctx, TriggerRealtime); err != nil {
					l.logger.Warn("realtime refresh failed", zap.Error(err))
				}
			}()
		}

		if ctx.Err() != nil {
			return nil
		}
		l.logger.Warn("realtime subscription ended, resubscribing", zap.String("event", l.event))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.minBackoff):
		}
	}
}
