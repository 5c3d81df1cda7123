package analytics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rmacedo/edgeadmin-go/internal/domain"
	"github.com/rmacedo/edgeadmin-go/internal/infra/observability"

	"go.uber.org/zap"
)

type captureStore struct {
	mu      sync.Mutex
	batches [][]domain.TrafficEvent
}

func (s *captureStore) InsertEvents(ctx context.Context, events []domain.TrafficEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := make([]domain.TrafficEvent, len(events))
	copy(batch, events)
	s.batches = append(s.batches, batch)
	return nil
}

func (s *captureStore) GetTrafficSummary(ctx context.Context, domainID, period string) (*domain.TrafficSummary, error) {
	return nil, nil
}

func (s *captureStore) GetTrafficTimeseries(ctx context.Context, domainID, period string) ([]domain.TrafficPoint, error) {
	return nil, nil
}

func (s *captureStore) GetTopCountries(ctx context.Context, domainID, period string, limit int) ([]domain.CountryCount, error) {
	return nil, nil
}

func (s *captureStore) CountEventsSince(ctx context.Context, since time.Time) (int64, error) {
	return 0, nil
}

func (s *captureStore) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func event(path string) domain.TrafficEvent {
	return domain.TrafficEvent{
		DomainID:   "dom-1",
		Path:       path,
		Method:     "GET",
		StatusCode: 200,
		OccurredAt: time.Now(),
	}
}

func TestQueue_FlushesFullBatch(t *testing.T) {
	store := &captureStore{}
	q := NewQueue(store, observability.NewMetrics(), zap.NewNop(), 3, time.Hour)
	q.Start()
	defer q.Stop(context.Background())

	q.Enqueue(event("/a"), event("/b"), event("/c"))

	deadline := time.Now().Add(2 * time.Second)
	for store.total() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 3 events flushed, got %d", store.total())
		}
		time.Sleep(10 * time.Millisecond)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.batches) != 1 {
		t.Errorf("expected a single batch, got %d", len(store.batches))
	}
}

func TestQueue_FlushesOnInterval(t *testing.T) {
	store := &captureStore{}
	q := NewQueue(store, observability.NewMetrics(), zap.NewNop(), 100, 50*time.Millisecond)
	q.Start()
	defer q.Stop(context.Background())

	q.Enqueue(event("/only"))

	deadline := time.Now().Add(2 * time.Second)
	for store.total() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("expected interval flush of a partial batch")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestQueue_StopDrainsBuffer(t *testing.T) {
	store := &captureStore{}
	q := NewQueue(store, observability.NewMetrics(), zap.NewNop(), 100, time.Hour)
	q.Start()

	for i := 0; i < 10; i++ {
		q.Enqueue(event("/x"))
	}

	q.Stop(context.Background())

	if store.total() != 10 {
		t.Errorf("expected all 10 buffered events flushed on stop, got %d", store.total())
	}
}

func TestQueue_RejectsAfterStop(t *testing.T) {
	store := &captureStore{}
	q := NewQueue(store, observability.NewMetrics(), zap.NewNop(), 10, time.Hour)
	q.Start()
	q.Stop(context.Background())

	if n := q.Enqueue(event("/late")); n != 0 {
		t.Errorf("expected 0 accepted after stop, got %d", n)
	}
}

func TestQueue_DropsWhenFull(t *testing.T) {
	store := &captureStore{}
	// batchSize 1 gives a buffer of 4; without Start nothing consumes.
	q := NewQueue(store, observability.NewMetrics(), zap.NewNop(), 1, time.Hour)

	accepted := 0
	for i := 0; i < 10; i++ {
		accepted += q.Enqueue(event("/burst"))
	}
	if accepted != 4 {
		t.Errorf("expected buffer capacity of 4 accepted, got %d", accepted)
	}
}
