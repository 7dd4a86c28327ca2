// File: internal/services/retention/retention.go
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"github.com/iyunix/go-agentdesk/internal/metrics"
)

// Logger defines the logging interface used by the retention job.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// UserLister enumerates the accounts whose trash is swept.
type UserLister interface {
	ListUsernames(ctx context.Context) ([]string, error)
}

// TrashPurger drops trash entries deleted before a cutoff.
type TrashPurger interface {
	PurgeTrash(ctx context.Context, username string, olderThan time.Time) (int, error)
}

type Config struct {
	Cron   string        // standard 5-field cron; empty disables the job
	MaxAge time.Duration // entries deleted longer ago than this are purged
}

// Service purges old trash entries on a cron schedule.
type Service struct {
	cfg    Config
	users  UserLister
	trash  TrashPurger
	logger Logger
	now    func() time.Time
}

func NewService(cfg Config, users UserLister, trash TrashPurger, logger Logger) (*Service, error) {
	if cfg.Cron != "" && !gronx.IsValid(cfg.Cron) {
		return nil, fmt.Errorf("invalid trash retention cron expression: %s", cfg.Cron)
	}
	if cfg.Cron != "" && cfg.MaxAge <= 0 {
		return nil, fmt.Errorf("trash retention age must be positive")
	}
	return &Service{cfg: cfg, users: users, trash: trash, logger: logger, now: time.Now}, nil
}

func (s *Service) Enabled() bool { return s.cfg.Cron != "" }

// RunOnce purges every user's trash and returns the number of entries removed.
func (s *Service) RunOnce(ctx context.Context) (int, error) {
	usernames, err := s.users.ListUsernames(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	cutoff := s.now().Add(-s.cfg.MaxAge)
	total := 0
	for _, username := range usernames {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		n, err := s.trash.PurgeTrash(ctx, username, cutoff)
		if err != nil {
			s.logger.Warn("trash purge skipped", "username", username, "error", err)
			continue
		}
		if n > 0 {
			total += n
			s.logger.Debug("trash purged", "username", username, "removed", n)
		}
	}
	metrics.TrashPurged.Add(float64(total))
	s.logger.Info("trash retention run finished", "users", len(usernames), "removed", total, "cutoff", cutoff.UTC().Format(time.RFC3339))
	return total, nil
}

// Start runs the scheduler until ctx ends. It returns immediately when
// the job is disabled.
func (s *Service) Start(ctx context.Context) {
	if !s.Enabled() {
		s.logger.Info("trash retention disabled")
		return
	}
	s.logger.Info("trash retention enabled", "cron", s.cfg.Cron, "max_age", s.cfg.MaxAge.String())
	go s.loop(ctx)
}

func (s *Service) loop(ctx context.Context) {
	for {
		next, err := gronx.NextTickAfter(s.cfg.Cron, s.now().UTC(), false)
		if err != nil {
			s.logger.Error("trash retention next tick failed", "cron", s.cfg.Cron, "error", err)
			next = s.now().Add(time.Minute)
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("trash retention stopping")
			return
		case <-timer.C:
		}

		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("trash retention run failed", "error", err)
		}
	}
}
