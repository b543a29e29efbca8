package control

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.viam.com/utils"

	"go.viam.com/fieldnav/logging"
)

// LoopConfig configures a fixed-rate loop.
type LoopConfig struct {
	// Frequency is the tick rate in Hz, in (0, 200].
	Frequency float64 `json:"frequency"`
	MaxTicks  int     `json:"max_ticks"`
}

// Loop steps a Stepper on a clock in a background goroutine, one tick at a time.
type Loop struct {
	cfg     LoopConfig
	stepper Stepper
	onStep  StepFunc
	logger  logging.Logger
	clock   clock.Clock
	dt      time.Duration

	ticks atomic.Int64

	mu      sync.Mutex
	result  Result
	started bool

	activeBackgroundWorkers sync.WaitGroup
	cancelCtx               context.Context
	cancel                  context.CancelFunc
	done                    chan struct{}
}

// NewLoop constructs a loop that is not yet running. A nil clk means the wall clock.
func NewLoop(stepper Stepper, cfg LoopConfig, clk clock.Clock, onStep StepFunc, logger logging.Logger) (*Loop, error) {
	if cfg.Frequency <= 0.0 || cfg.Frequency > 200 {
		return nil, errors.New("loop frequency shouldn't be 0 or above 200Hz")
	}
	if cfg.MaxTicks <= 0 {
		return nil, errors.Errorf("max ticks must be positive, got %d", cfg.MaxTicks)
	}
	if clk == nil {
		clk = clock.New()
	}
	cancelCtx, cancel := context.WithCancel(context.Background())
	return &Loop{
		cfg:       cfg,
		stepper:   stepper,
		onStep:    onStep,
		logger:    logger,
		clock:     clk,
		dt:        time.Duration(float64(time.Second) * (1.0 / cfg.Frequency)),
		result:    newResult(),
		cancelCtx: cancelCtx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}, nil
}

// Start starts ticking. A loop can only be started once.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return errors.New("loop already started")
	}
	l.started = true
	l.logger.Infof("running loop at %1.4fHz (%v per tick)", l.cfg.Frequency, l.dt)

	ticker := l.clock.Ticker(l.dt)
	start := l.clock.Now()
	waitCh := make(chan struct{})
	l.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		close(waitCh)
		defer ticker.Stop()
		defer close(l.done)
		for {
			select {
			case <-l.cancelCtx.Done():
				l.finish(OutcomeCanceled, start)
				return
			case <-ticker.C:
			}
			if l.tick(start) {
				return
			}
		}
	}, l.activeBackgroundWorkers.Done)
	<-waitCh
	return nil
}

// tick runs one step and reports whether the loop is over.
func (l *Loop) tick(start time.Time) bool {
	res := l.stepper.Step()
	l.mu.Lock()
	over := l.result.record(res)
	ticks := l.result.Ticks
	l.mu.Unlock()
	if over {
		l.finish(OutcomeArrived, start)
		return true
	}
	l.ticks.Store(int64(ticks))
	if l.onStep != nil {
		l.onStep(ticks, res)
	}
	if ticks >= l.cfg.MaxTicks {
		l.finish(OutcomeBudgetExhausted, start)
		return true
	}
	return false
}

func (l *Loop) finish(outcome Outcome, start time.Time) {
	l.mu.Lock()
	l.result.Outcome = outcome
	l.result.Elapsed = l.clock.Since(start)
	ticks := l.result.Ticks
	l.mu.Unlock()
	l.logger.Infow("loop finished", "outcome", outcome, "ticks", ticks)
}

// Ticks returns the number of moving ticks taken so far.
func (l *Loop) Ticks() int64 {
	return l.ticks.Load()
}

// Done is closed once the loop stops ticking.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the loop stops on its own or is stopped, and returns the result.
func (l *Loop) Wait() Result {
	l.activeBackgroundWorkers.Wait()
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.result
}

// Stop stops the loop and waits for it to exit. Stopping a finished or never started loop is a
// no-op.
func (l *Loop) Stop() Result {
	l.cancel()
	return l.Wait()
}
