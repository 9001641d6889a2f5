package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Cycle drives one gate on a fixed schedule: after Offset the gate starts,
// Duration later it ends, and the pattern repeats every Period.
type Cycle struct {
	Gate     string        `yaml:"gate"`
	Period   time.Duration `yaml:"period"`
	Duration time.Duration `yaml:"duration"`
	Offset   time.Duration `yaml:"offset"`
}

// Validate checks that the cycle can run.
func (c Cycle) Validate() error {
	if c.Gate == "" {
		return fmt.Errorf("event cycle: empty gate")
	}
	if c.Duration <= 0 {
		return fmt.Errorf("event cycle %q: duration must be positive", c.Gate)
	}
	if c.Period < c.Duration {
		return fmt.Errorf("event cycle %q: period %s shorter than duration %s", c.Gate, c.Period, c.Duration)
	}
	if c.Offset < 0 {
		return fmt.Errorf("event cycle %q: negative offset", c.Gate)
	}
	return nil
}

// RunCycles runs every cycle against bus until ctx is canceled. A gate
// that is running when ctx ends is ended before RunCycles returns.
func RunCycles(ctx context.Context, bus *Bus, cycles []Cycle) error {
	for _, c := range cycles {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range cycles {
		g.Go(func() error {
			return runCycle(gctx, bus, c)
		})
	}
	return g.Wait()
}

func runCycle(ctx context.Context, bus *Bus, c Cycle) error {
	slog.Info("event cycle started",
		"gate", c.Gate,
		"period", c.Period,
		"duration", c.Duration,
		"offset", c.Offset)

	defer bus.End(c.Gate)

	wait := c.Offset
	for {
		if !sleep(ctx, wait) {
			return nil
		}
		bus.Start(c.Gate)

		if !sleep(ctx, c.Duration) {
			return nil
		}
		bus.End(c.Gate)

		wait = c.Period - c.Duration
	}
}

// sleep waits for d or until ctx is done. Returns false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
