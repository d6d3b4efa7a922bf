// Package poll waits for an external system to converge on a condition.
//
// A wait is a loop of fetch, evaluate, sleep. The fetch reads fresh state from
// the remote system; the check classifies it as Done, NotYet or Fatal. The loop
// stops on Done, on Fatal, when a fetch fails, or when the configured timeout
// has elapsed. Elapsed time is taken from the Clock, so tests can drive a wait
// without sleeping.
//
// Every call to Until is independent. Nothing is shared between calls, so
// concurrent waits need no coordination.
package poll

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Default cadences for waits against the API server.
const (
	DefaultInterval         = 5 * time.Second
	DefaultDeletionInterval = 2 * time.Second
	DefaultTimeout          = 30 * time.Second
)

// Clock is the time source of a wait.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// RealClock returns a Clock backed by the runtime's monotonic clock.
func RealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Outcome is the verdict of a check over one fetched value.
type Outcome int

const (
	// NotYet means keep polling.
	NotYet Outcome = iota
	// Done means the awaited condition holds.
	Done
	// Fatal means the awaited condition can never hold.
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Done:
		return "done"
	case Fatal:
		return "fatal"
	default:
		return "not_yet"
	}
}

// Result is returned by a check. Reason is only meaningful for Fatal and is
// logged for NotYet.
type Result struct {
	Outcome Outcome
	Reason  string
}

// Finished reports the condition holds.
func Finished() Result {
	return Result{Outcome: Done}
}

// Pending reports the condition does not hold yet.
func Pending(reason string) Result {
	return Result{Outcome: NotYet, Reason: reason}
}

// Failed reports the condition can never hold.
func Failed(format string, args ...any) Result {
	return Result{Outcome: Fatal, Reason: fmt.Sprintf(format, args...)}
}

// TimeoutError is returned when the check never reported Done within the timeout.
type TimeoutError struct {
	Resource string
	Elapsed  time.Duration
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s was not completed within %s (elapsed %s)", e.Resource, e.Timeout, e.Elapsed.Round(time.Millisecond))
}

// FatalError is returned when the check reported the condition can never hold.
type FatalError struct {
	Resource string
	Reason   string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Resource, e.Reason)
}

// Config controls a single wait.
type Config struct {
	// Resource names what is being waited for in logs and errors.
	Resource string
	Interval time.Duration
	Timeout  time.Duration
	// Clock defaults to RealClock.
	Clock Clock
	// Retryable, when set, lets fetch errors it accepts count as NotYet.
	// Any other fetch error ends the wait immediately.
	Retryable func(error) bool
}

// Until fetches a value and evaluates check against it until check reports
// Done or Fatal, fetch fails, or Timeout elapses. A zero Timeout performs
// exactly one fetch.
func Until[T any](ctx context.Context, cfg Config, fetch func(context.Context) (T, error), check func(T) Result) error {
	clock := cfg.Clock
	if clock == nil {
		clock = RealClock()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	start := clock.Now()
	for attempt := 1; ; attempt++ {
		var res Result
		value, err := fetch(ctx)
		switch {
		case err == nil:
			res = check(value)
		case cfg.Retryable != nil && cfg.Retryable(err):
			res = Pending(err.Error())
		default:
			return fmt.Errorf("failed to fetch %s: %w", cfg.Resource, err)
		}

		switch res.Outcome {
		case Done:
			tflog.Info(ctx, fmt.Sprintf("%s complete", cfg.Resource), map[string]any{"attempts": attempt})
			return nil
		case Fatal:
			return &FatalError{Resource: cfg.Resource, Reason: res.Reason}
		}

		elapsed := clock.Now().Sub(start)
		if elapsed >= cfg.Timeout {
			return &TimeoutError{Resource: cfg.Resource, Elapsed: elapsed, Timeout: cfg.Timeout}
		}

		tflog.Debug(ctx, fmt.Sprintf("Waiting for %s", cfg.Resource), map[string]any{
			"elapsed": elapsed.String(),
			"timeout": cfg.Timeout.String(),
			"reason":  res.Reason,
		})
		if err := clock.Sleep(ctx, interval); err != nil {
			return fmt.Errorf("waiting for %s: %w", cfg.Resource, err)
		}
	}
}
