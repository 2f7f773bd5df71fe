package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatflowers/loyalty/internal/app/service/coupon"
	"github.com/fatflowers/loyalty/internal/app/service/point"
	"github.com/fatflowers/loyalty/pkg/config"
	"github.com/fatflowers/loyalty/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Scheduler fires the two daily sweeps at their configured wall-clock times.
// Each firing runs one bounded pass; sweeps are idempotent, so a missed or
// failed pass is simply picked up at the next firing.
type Scheduler struct {
	cfg     *config.Config
	log     *zap.SugaredLogger
	coupons *coupon.Service
	ledger  point.Ledger
	bpDur   *prometheus.HistogramVec

	stop chan struct{}
	wg   sync.WaitGroup
}

func New(cfg *config.Config, log *zap.SugaredLogger, coupons *coupon.Service, ledger point.Ledger) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		log:     log,
		coupons: coupons,
		ledger:  ledger,
		bpDur:   metrics.BusinessProcess("loyalty"),
		stop:    make(chan struct{}),
	}
}

// ParseTimeOfDay parses "HH:MM" into hour and minute.
func ParseTimeOfDay(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time of day %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}

// NextRun returns the next occurrence of hour:minute strictly after now.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s *Scheduler) runDaily(name, at string, job func(ctx context.Context, now time.Time)) error {
	hour, minute, err := ParseTimeOfDay(at)
	if err != nil {
		return fmt.Errorf("sweep %s: %w", name, err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			next := NextRun(time.Now(), hour, minute)
			timer := time.NewTimer(time.Until(next))
			select {
			case <-s.stop:
				timer.Stop()
				return
			case now := <-timer.C:
				start := time.Now()
				job(context.Background(), now)
				if s.bpDur != nil {
					s.bpDur.WithLabelValues("sweep", name).Observe(metrics.MillisecondsSince(start))
				}
			}
		}
	}()
	return nil
}

// Start launches the expire and purge loops.
func (s *Scheduler) Start() error {
	if err := s.runDaily("expire", s.cfg.Sweep.ExpireAt, s.expire); err != nil {
		return err
	}
	if err := s.runDaily("purge", s.cfg.Sweep.PurgeAt, s.purge); err != nil {
		return err
	}
	s.log.Infow("sweep scheduler started",
		"expire_at", s.cfg.Sweep.ExpireAt, "purge_at", s.cfg.Sweep.PurgeAt)
	return nil
}

// Stop signals the loops and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
}

func (s *Scheduler) expire(ctx context.Context, now time.Time) {
	if n, err := s.coupons.ExpireSweep(ctx, now); err != nil {
		s.log.Errorw("coupon expire sweep failed", "err", err)
	} else {
		s.log.Infow("coupon expire sweep", "rows", n)
	}
	if n, err := s.ledger.SweepExpired(ctx, now); err != nil {
		s.log.Errorw("point expire sweep failed", "err", err)
	} else {
		s.log.Infow("point expire sweep", "entries", n)
	}
}

func (s *Scheduler) purge(ctx context.Context, now time.Time) {
	if n, err := s.coupons.PurgeSweep(ctx, now); err != nil {
		s.log.Errorw("coupon purge sweep failed", "err", err)
	} else {
		s.log.Infow("coupon purge sweep", "rows", n)
	}
	if n, err := s.ledger.PurgeExpired(ctx, now); err != nil {
		s.log.Errorw("point purge sweep failed", "err", err)
	} else {
		s.log.Infow("point purge sweep", "entries", n)
	}
}

func register(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(register),
)
