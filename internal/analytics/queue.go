// Package analytics buffers incoming traffic events and writes them to
// the store in batches, so the ingest endpoint stays fast even when the
// store is slow.
package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/rmacedo/edgeadmin-go/internal/domain"
	"github.com/rmacedo/edgeadmin-go/internal/infra/observability"
	"github.com/rmacedo/edgeadmin-go/internal/port"

	"go.uber.org/zap"
)

// Queue accepts events and flushes them when a batch fills up or the
// flush interval elapses, whichever comes first.
type Queue struct {
	store     port.AnalyticsStore
	metrics   *observability.Metrics
	logger    *zap.Logger
	batchSize int
	interval  time.Duration

	events chan domain.TrafficEvent
	done   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewQueue creates a queue. The channel holds four batches of slack so
// short store stalls do not reject events.
func NewQueue(store port.AnalyticsStore, metrics *observability.Metrics, logger *zap.Logger, batchSize int, interval time.Duration) *Queue {
	return &Queue{
		store:     store,
		metrics:   metrics,
		logger:    logger,
		batchSize: batchSize,
		interval:  interval,
		events:    make(chan domain.TrafficEvent, batchSize*4),
		done:      make(chan struct{}),
	}
}

// Start launches the background flusher.
func (q *Queue) Start() {
	q.wg.Add(1)
	go q.run()
}

// Enqueue accepts events without blocking. Events that do not fit in
// the buffer are dropped and counted; the ingest path never waits on
// the store.
func (q *Queue) Enqueue(events ...domain.TrafficEvent) int {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		q.metrics.AddEventsDropped(len(events))
		return 0
	}
	q.mu.Unlock()

	accepted := 0
	for _, e := range events {
		select {
		case q.events <- e:
			accepted++
		default:
			q.metrics.AddEventsDropped(len(events) - accepted)
			q.logger.Warn("analytics queue full, dropping events",
				zap.Int("dropped", len(events)-accepted),
			)
			q.metrics.AddEventsQueued(accepted)
			return accepted
		}
	}
	q.metrics.AddEventsQueued(accepted)
	return accepted
}

// Stop drains the buffer and flushes the remainder. Safe to call once.
func (q *Queue) Stop(ctx context.Context) {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	q.mu.Unlock()

	close(q.done)

	finished := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		q.logger.Warn("analytics queue: shutdown deadline hit before drain finished")
	}
}

func (q *Queue) run() {
	defer q.wg.Done()

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	batch := make([]domain.TrafficEvent, 0, q.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := q.store.InsertEvents(ctx, batch)
		cancel()
		if err != nil {
			q.metrics.AddEventsDropped(len(batch))
			q.metrics.IncrExternalError("analytics-flush")
			q.logger.Error("analytics queue: flush failed",
				zap.Int("events", len(batch)),
				zap.Error(err),
			)
		} else {
			q.metrics.AddEventsFlushed(len(batch))
			q.logger.Debug("analytics queue: flushed batch",
				zap.Int("events", len(batch)),
			)
		}
		batch = batch[:0]
	}

	for {
		select {
		case e := <-q.events:
			batch = append(batch, e)
			if len(batch) >= q.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-q.done:
			// Drain whatever is still buffered, then do a final flush.
			for {
				select {
				case e := <-q.events:
					batch = append(batch, e)
					if len(batch) >= q.batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}
