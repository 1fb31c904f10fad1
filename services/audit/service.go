// Package audit records synthesis outcomes asynchronously for the
// audit/logging collaborators. Recording never blocks or fails a synthesis
// call; a full buffer drops the record and counts the drop.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Record captures one synthesis outcome for traceability
type Record struct {
	RuleID              string
	Query               string
	Category            string
	Confidence          float64
	RequiresHumanReview bool
	FallbackUsed        bool
	SourcePrinciples    []string
	CreatedAt           time.Time
}

// Repository persists audit records
type Repository interface {
	Save(ctx context.Context, record *Record) error
}

// Config holds configuration for the audit service
type Config struct {
	BufferSize  int // Size of the record buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  1024,
		WorkerCount: 2,
	}
}

// Service handles asynchronous audit recording
type Service struct {
	repo        Repository
	logger      *zap.Logger
	recordChan  chan *Record
	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	started     bool
	dropped     uint64
	mu          sync.Mutex
}

// NewService creates a new audit Service instance
func NewService(repo Repository, logger *zap.Logger, config Config) *Service {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultConfig().WorkerCount
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		repo:        repo,
		logger:      logger,
		recordChan:  make(chan *Record, config.BufferSize),
		workerCount: config.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the background workers
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service", zap.Int("worker_count", s.workerCount))
	return nil
}

// Submit queues a record for persistence. Non-blocking: when the buffer is
// full the record is dropped and counted rather than stalling synthesis.
func (s *Service) Submit(record *Record) {
	select {
	case s.recordChan <- record:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
		s.logger.Warn("audit buffer full, dropping record", zap.String("rule_id", record.RuleID))
	}
}

// Stop gracefully stops the audit service, draining pending records
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("audit service not started")
	}
	s.mu.Unlock()

	close(s.recordChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		s.logger.Info("audit service stopped")
		return nil
	case <-time.After(timeout):
		s.cancel()
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// Dropped returns the number of records lost to a full buffer
func (s *Service) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// worker drains the record channel until it is closed
func (s *Service) worker(id int) {
	defer s.wg.Done()

	for record := range s.recordChan {
		if err := s.repo.Save(s.ctx, record); err != nil {
			s.logger.Error("failed to save audit record",
				zap.Error(err),
				zap.Int("worker", id),
				zap.String("rule_id", record.RuleID))
		}
	}
}
