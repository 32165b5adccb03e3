package worker

import (
	"context"
	"time"

	"reservation-service/internal/service"
	"reservation-service/internal/util"

	"go.uber.org/zap"
)

const sweepLockKey = "reservation-sweep"

// Locker is a distributed lock so only one instance sweeps per tick.
// Satisfied by redisclient.Client; may be nil in single-instance setups.
type Locker interface {
	AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, lockKey string) error
}

// Sweeper periodically expires overdue pending reservations. The same
// sweep can also be triggered on demand through the maintenance endpoint;
// both paths are idempotent.
type Sweeper struct {
	reservations *service.ReservationService
	locker       Locker
	interval     time.Duration
	logger       *zap.Logger
	stop         chan struct{}
}

// NewSweeper creates a new expiry sweeper
func NewSweeper(reservations *service.ReservationService, locker Locker, interval time.Duration) *Sweeper {
	return &Sweeper{
		reservations: reservations,
		locker:       locker,
		interval:     interval,
		logger:       util.GetLogger(),
		stop:         make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is cancelled or Stop is
// called.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info("Starting expiry sweeper", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper context cancelled, stopping")
			return ctx.Err()
		case <-s.stop:
			s.logger.Info("Sweeper stopped")
			return nil
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep, skipping when another instance holds
// the lock.
func (s *Sweeper) RunOnce(ctx context.Context) {
	if s.locker != nil {
		acquired, err := s.locker.AcquireLock(ctx, sweepLockKey, s.interval)
		if err != nil {
			s.logger.Warn("Sweep lock acquisition failed, sweeping anyway", zap.Error(err))
		} else if !acquired {
			s.logger.Debug("Sweep lock held elsewhere, skipping")
			return
		} else {
			defer func() {
				if err := s.locker.ReleaseLock(ctx, sweepLockKey); err != nil {
					s.logger.Warn("Failed to release sweep lock", zap.Error(err))
				}
			}()
		}
	}

	result, err := s.reservations.Expire(ctx)
	if err != nil {
		s.logger.Error("Sweep failed", zap.Error(err))
		return
	}

	if result.ExpiredCount > 0 {
		s.logger.Info("Sweep completed", zap.Int64("expired_count", result.ExpiredCount))
	}
}

// Stop stops the sweeper
func (s *Sweeper) Stop() {
	close(s.stop)
}
