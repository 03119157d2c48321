// Package scheduler runs the periodic maintenance jobs: conversation
// session expiry and storage sweep of lazily expired records.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/interfaces"
)

// DefaultSweepSchedule runs the sweep daily at 03:00.
const DefaultSweepSchedule = "0 3 * * *"

// Sweeper owns the cron instance for storage maintenance.
type Sweeper struct {
	cron         *cron.Cron
	conversation interfaces.ConversationService
	storage      interfaces.StorageManager
	maxAge       time.Duration
	logger       arbor.ILogger
}

// NewSweeper creates a sweeper that expires sessions idle longer than
// maxAge and compacts expired storage records.
func NewSweeper(conversation interfaces.ConversationService, storage interfaces.StorageManager, maxAge time.Duration, logger arbor.ILogger) *Sweeper {
	return &Sweeper{
		cron:         cron.New(),
		conversation: conversation,
		storage:      storage,
		maxAge:       maxAge,
		logger:       logger,
	}
}

// Start registers the sweep on the given cron schedule and starts the cron
// loop. An empty schedule uses the default.
func (s *Sweeper) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}

	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", schedule).Msg("Maintenance sweep scheduled")
	return nil
}

// RunOnce executes one sweep immediately.
func (s *Sweeper) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if removed, err := s.conversation.ExpireSessions(ctx, s.maxAge); err != nil {
		s.logger.Warn().Err(err).Msg("Session expiry sweep failed")
	} else if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("Expired idle sessions")
	}

	if err := s.storage.Sweep(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Storage sweep failed")
	}
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}
