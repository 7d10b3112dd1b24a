package sweeper

import (
	"context"
	"fmt"
	"time"

	"crafthub/pkg/config"
	"crafthub/pkg/logger"

	"github.com/robfig/cron/v3"
)

const (
	LockKey = "crafthub:sweeper:expire-holds"

	stopTimeout = 10 * time.Second
)

type Expirer interface {
	ExpireDue(ctx context.Context, now time.Time, batch int) (int, error)
}

// Sweeper expires lapsed holds on a cron schedule. With a Locker, only the
// replica that wins the lease sweeps on a given tick; without one every
// tick sweeps.
type Sweeper struct {
	expirer  Expirer
	locker   Locker
	schedule string
	batch    int
	lockTTL  time.Duration
	log      *logger.Logger
	now      func() time.Time

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func New(expirer Expirer, locker Locker, cfg *config.Config) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		expirer:  expirer,
		locker:   locker,
		schedule: cfg.SweepSchedule,
		batch:    cfg.SweepBatchSize,
		lockTTL:  cfg.SweepLockTTL,
		log:      cfg.Log,
		now:      func() time.Time { return time.Now().UTC() },
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Sweeper) Start() error {
	cl := cronLogger{log: s.log}
	s.cron = cron.New(cron.WithChain(
		cron.Recover(cl),
		cron.SkipIfStillRunning(cl),
	))

	if _, err := s.cron.AddFunc(s.schedule, s.tick); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.log.Info("Expiry sweeper started",
		"schedule", s.schedule,
		"batch_size", s.batch,
		"distributed_lock", s.locker != nil,
	)
	return nil
}

// Stop cancels an in-flight sweep and waits for it to return or ctx to end.
func (s *Sweeper) Stop(ctx context.Context) {
	s.cancel()
	if s.cron == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
		s.log.Info("Expiry sweeper stopped")
	case <-ctx.Done():
		s.log.Warn("Expiry sweeper did not stop in time")
	}
}

func (s *Sweeper) tick() {
	if _, err := s.RunOnce(s.ctx); err != nil && s.ctx.Err() == nil {
		s.log.Error("Expiry sweep failed", "error", err)
	}
}

// RunOnce performs a single sweep and reports how many holds it expired.
// Losing the lock is not an error; the sweep is simply skipped.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, LockKey, s.lockTTL)
		if err != nil {
			return 0, err
		}
		if !ok {
			s.log.Debug("Expiry sweep skipped, another replica holds the lock")
			return 0, nil
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.log.Warn("Failed to release sweeper lock", "error", err)
			}
		}()
	}

	start := time.Now()
	expired, err := s.expirer.ExpireDue(ctx, s.now(), s.batch)
	if err != nil {
		return expired, err
	}

	if expired > 0 {
		s.log.Info("Expired holds released",
			"count", expired,
			"duration", time.Since(start),
		)
	} else {
		s.log.Debug("No expired holds", "duration", time.Since(start))
	}
	return expired, nil
}

type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

// Run starts the schedule and stops it when ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	s.Stop(stopCtx)
	return nil
}
