package scheduler

import (
	"context"
	"log"
	"time"

	"mailpilot-backend/internal/event/usecase"
)

// ProcessScheduler runs the background processing pass on a fixed interval
type ProcessScheduler struct {
	runner   *usecase.Runner
	interval time.Duration
	stopChan chan struct{}
}

// NewProcessScheduler creates a new scheduler
func NewProcessScheduler(runner *usecase.Runner, interval time.Duration) *ProcessScheduler {
	return &ProcessScheduler{
		runner:   runner,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *ProcessScheduler) Start() {
	log.Printf("[ProcessScheduler] Starting background processing (interval: %s)", s.interval)

	go func() {
		// Run immediately on start
		s.runOnce()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stopChan:
				log.Println("[ProcessScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *ProcessScheduler) Stop() {
	close(s.stopChan)
}

func (s *ProcessScheduler) runOnce() {
	if _, err := s.runner.RunAll(context.Background(), s.runner.ScheduledOptions()); err != nil {
		log.Printf("[ProcessScheduler] Run failed: %v", err)
	}
}
