// Package looper runs named units of work on a fixed interval.
//
// A failing or panicking run is logged and the schedule goes on; nothing a
// Looper does can stop the process or the other loops.
//
// Typical usage:
//
//	lm := looper.NewManager(func(msg string) {
//	    log.Println("LOOP:", msg)
//	})
//
//	err := lm.Start(ctx, updater) // updater implements Looper
//
//	// later...
//	_ = lm.Stop(updater.Name())
package looper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidInterval = errors.New("loop interval must be positive")

// Looper is one periodic job.
type Looper interface {
	Name() string
	Interval() time.Duration
	Loop(ctx context.Context) error
}

// StatusReporter receives lifecycle events for loops.
// Example messages:
//
//	running:Bot List Updater
//	error:Bot List Updater:connection refused
//	stopped:Bot List Updater
type StatusReporter func(string)

// tickerFunc returns a tick channel and a stop function.
type tickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Runner drives a single Looper. It is either waiting for the next tick or
// running the job; ticks that arrive while the job runs are dropped, so runs
// never overlap.
type Runner struct {
	looper   Looper
	reporter StatusReporter
	ticker   tickerFunc
}

// NewRunner validates l and returns a Runner for it.
func NewRunner(l Looper, reporter StatusReporter) (*Runner, error) {
	if l.Interval() <= 0 {
		return nil, fmt.Errorf("%s: %w", l.Name(), ErrInvalidInterval)
	}
	return &Runner{
		looper:   l,
		reporter: reporter,
		ticker:   realTicker,
	}, nil
}

// Run blocks until ctx is done. The first run happens one full interval
// after Run is called.
func (r *Runner) Run(ctx context.Context) {
	ticks, stop := r.ticker(r.looper.Interval())
	defer stop()

	name := r.looper.Name()
	log.Printf("[INFO] [Looper] %s started, interval %v", name, r.looper.Interval())
	r.report("running:" + name)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[INFO] [Looper] %s stopped", name)
			r.report("stopped:" + name)
			return
		case <-ticks:
			runID := uuid.NewString()
			if err := r.runOnce(ctx); err != nil {
				log.Printf("[ERR] %s (run %s): %v", name, runID, err)
				r.report("error:" + name + ":" + err.Error())
			}
		}
	}
}

// runOnce calls the job, turning a panic into an error.
func (r *Runner) runOnce(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return r.looper.Loop(ctx)
}

func (r *Runner) report(s string) {
	if r.reporter != nil {
		r.reporter(s)
	}
}
