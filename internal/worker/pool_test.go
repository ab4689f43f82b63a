package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"examsathi/internal/models"
)

type stubStore struct {
	mu      sync.Mutex
	entries []string
	block   chan struct{}
}

func (s *stubStore) Record(ctx context.Context, l *models.AskLog) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, l.Question)
	return nil
}

func TestPool_StopDrainsQueue(t *testing.T) {
	store := &stubStore{}
	p := NewPool(store, 2, 10)
	p.Start()

	for _, q := range []string{"What is photosynthesis?", "Define mitosis", "Explain the water cycle"} {
		if err := p.Record(context.Background(), &models.AskLog{Question: q}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	p.Stop()

	if len(store.entries) != 3 {
		t.Fatalf("expected 3 written entries, got %d", len(store.entries))
	}
}

func TestPool_FullQueueDrops(t *testing.T) {
	store := &stubStore{block: make(chan struct{})}
	p := NewPool(store, 1, 0)

	// No worker is receiving, so an unbuffered queue is always full.
	if err := p.Record(context.Background(), &models.AskLog{Question: "q"}); !errors.Is(err, errQueueFull) {
		t.Fatalf("expected errQueueFull, got %v", err)
	}
	close(store.block)
}

func TestPool_RecordAfterStop(t *testing.T) {
	p := NewPool(&stubStore{}, 1, 1)
	p.Start()
	p.Stop()
	p.Stop()

	if err := p.Record(context.Background(), &models.AskLog{Question: "late"}); !errors.Is(err, errPoolStopped) {
		t.Fatalf("expected errPoolStopped, got %v", err)
	}
}

func TestPool_RecordConcurrentWithStop(t *testing.T) {
	store := &stubStore{}
	p := NewPool(store, 2, 64)
	p.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				err := p.Record(context.Background(), &models.AskLog{Question: "q"})
				if err != nil && !errors.Is(err, errPoolStopped) && !errors.Is(err, errQueueFull) {
					t.Errorf("unexpected error %v", err)
					return
				}
			}
		}()
	}
	p.Stop()
	wg.Wait()

	if err := p.Record(context.Background(), &models.AskLog{Question: "late"}); !errors.Is(err, errPoolStopped) {
		t.Fatalf("expected errPoolStopped after Stop, got %v", err)
	}
}
