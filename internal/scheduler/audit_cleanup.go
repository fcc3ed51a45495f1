// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/booky/internal/config"
	"github.com/mrlokans/booky/internal/tasks"
)

// cronParser accepts standard five-field schedules ("0 3 * * *").
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CleanupQueue hands audit cleanup to the background task queue.
type CleanupQueue interface {
	EnqueueAuditCleanup(ctx context.Context, retentionDays int) (string, error)
}

// AuditCleanupScheduler periodically removes old audit events. With a queue
// the cleanup runs as a background task, otherwise it runs inline.
type AuditCleanupScheduler struct {
	cfg     config.Audit
	queue   CleanupQueue
	cleaner tasks.AuditEventCleaner

	cron       *cron.Cron
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc

	// cleaning is held for the duration of one cleanup. It is separate from
	// mu because Stop waits for running jobs while holding mu.
	cleaning sync.Mutex
}

// NewAuditCleanupScheduler creates a new scheduler instance. queue may be nil.
func NewAuditCleanupScheduler(cfg config.Audit, queue CleanupQueue, cleaner tasks.AuditEventCleaner) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		cfg:     cfg,
		queue:   queue,
		cleaner: cleaner,
		cron:    cron.New(cron.WithParser(cronParser)),
	}
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// NextRun returns the next time the schedule fires after from.
func NextRun(schedule string, from time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// Start begins the scheduler. An empty schedule leaves it disabled.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.cfg.CleanupSchedule == "" {
		log.Printf("Audit cleanup scheduler: disabled")
		return nil
	}

	if err := ValidateSchedule(s.cfg.CleanupSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.CleanupSchedule, err)
	}

	if _, err := s.cron.AddFunc(s.cfg.CleanupSchedule, func() {
		s.runCleanup(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRun(s.cfg.CleanupSchedule, time.Now())
	log.Printf("Audit cleanup scheduler: started with schedule '%s', keeping %d days. Next run: %v",
		s.cfg.CleanupSchedule, s.retentionDays(), nextRun)

	// Monitor for context cancellation
	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running cleanup.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Audit cleanup scheduler: stopped")
}

// RunNow triggers an immediate cleanup.
func (s *AuditCleanupScheduler) RunNow(ctx context.Context) {
	s.runCleanup(ctx)
}

// IsRunning returns whether the scheduler is active
func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *AuditCleanupScheduler) retentionDays() int {
	if s.cfg.RetentionDays > 0 {
		return s.cfg.RetentionDays
	}
	return tasks.DefaultAuditRetentionDays
}

func (s *AuditCleanupScheduler) runCleanup(ctx context.Context) {
	if !s.cleaning.TryLock() {
		log.Printf("Audit cleanup: previous run still in progress, skipping")
		return
	}
	defer s.cleaning.Unlock()

	days := s.retentionDays()

	if s.queue != nil {
		id, err := s.queue.EnqueueAuditCleanup(ctx, days)
		if err != nil {
			log.Printf("Audit cleanup: failed to enqueue: %v", err)
			return
		}
		log.Printf("Audit cleanup: queued task %s", id)
		return
	}

	if s.cleaner == nil {
		log.Printf("Audit cleanup: no cleaner configured")
		return
	}
	if err := tasks.CleanupAuditEventsProcessor(s.cleaner)(ctx, tasks.CleanupAuditEventsTask{RetentionDays: days}); err != nil {
		log.Printf("Audit cleanup: %v", err)
	}
}
