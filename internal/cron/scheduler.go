package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"vnpgate/internal/repository"
)

// Scheduler runs the stale-order sweeper: pending orders that never
// received a completing IPN within the payment window are cancelled so
// they stop occupying references the gateway could still confirm.
type Scheduler struct {
	cron        *cron.Cron
	orders      *repository.OrderRepository
	expireAfter time.Duration
	logger      *zap.Logger
}

// New creates a scheduler with the sweep job registered on spec.
func New(orders *repository.OrderRepository, spec string, expireAfter time.Duration, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:        cron.New(cron.WithSeconds()),
		orders:      orders,
		expireAfter: expireAfter,
		logger:      logger,
	}
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and returns a context that is done once any
// running job finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-s.expireAfter)
	cancelled, err := s.orders.CancelStale(ctx, cutoff)
	if err != nil {
		s.logger.Error("stale order sweep failed", zap.Error(err))
		return
	}
	if cancelled > 0 {
		s.logger.Info("stale orders cancelled", zap.Int64("count", cancelled))
	}
}
