package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"examsathi/internal/logger"
	"examsathi/internal/models"
)

type askLogStore interface {
	Record(ctx context.Context, l *models.AskLog) error
}

// Pool writes ask log entries in the background so /ask responses never wait
// on the database.
type Pool struct {
	store       askLogStore
	jobs        chan *models.AskLog
	workerCount int
	timeout     time.Duration

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewPool(store askLogStore, workerCount, queueSize int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		store:       store,
		jobs:        make(chan *models.AskLog, queueSize),
		workerCount: workerCount,
		timeout:     5 * time.Second,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	logger.Info("started ask log workers", zap.Int("workers", p.workerCount))
}

// Stop stops accepting entries and waits until the queued ones are written.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Record queues l. The entry is dropped when the queue is full.
func (p *Pool) Record(_ context.Context, l *models.AskLog) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return errPoolStopped
	}

	select {
	case p.jobs <- l:
		return nil
	default:
		logger.Warn("ask log queue full, dropping entry", zap.String("request_id", l.RequestID))
		return errQueueFull
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for l := range p.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.store.Record(ctx, l); err != nil {
			logger.Error("failed to write ask log",
				zap.Int("worker", id),
				zap.String("request_id", l.RequestID),
				zap.Error(err))
		}
		cancel()
	}

	logger.Debug("ask log worker shutting down", zap.Int("worker", id))
}
