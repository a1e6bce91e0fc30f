package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devicelab-dev/camera-mapper/pkg/compare"
	"github.com/devicelab-dev/camera-mapper/pkg/core"
	"github.com/devicelab-dev/camera-mapper/pkg/logger"
	"github.com/devicelab-dev/camera-mapper/pkg/resolver"
	"github.com/devicelab-dev/camera-mapper/pkg/session"
)

// Defaults for the per-task retry budget and the settle delay that absorbs
// UI animation latency between a tap and its verification screenshot.
const (
	DefaultMaxAttempts = 3
	DefaultSettleDelay = 500 * time.Millisecond
)

// Engine drives one discovery session over the declared plan.
type Engine struct {
	adapter     core.Adapter
	resolver    *resolver.Resolver
	comparator  *compare.Comparator
	plan        []Context
	maxAttempts int
	settleDelay time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithPlan replaces the default traversal plan.
func WithPlan(plan []Context) Option {
	return func(e *Engine) { e.plan = plan }
}

// WithRetryBudget sets the per-task attempt limit.
func WithRetryBudget(attempts int) Option {
	return func(e *Engine) {
		if attempts > 0 {
			e.maxAttempts = attempts
		}
	}
}

// WithSettleDelay sets the pause between a tap and its verification
// screenshot.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.settleDelay = d
		}
	}
}

// New creates an Engine.
func New(adapter core.Adapter, res *resolver.Resolver, cmp *compare.Comparator, opts ...Option) *Engine {
	e := &Engine{
		adapter:     adapter,
		resolver:    res,
		comparator:  cmp,
		plan:        DefaultPlan(),
		maxAttempts: DefaultMaxAttempts,
		settleDelay: DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run walks the plan and populates the session in place. Per-control
// failures are recorded as absence and never abort the traversal; a device
// bridge fault or a cancelled context aborts immediately, leaving
// already-committed controls intact and the session incomplete.
func (e *Engine) Run(ctx context.Context, sess *session.Session) error {
	for _, screenCtx := range e.plan {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := e.enterContext(ctx, screenCtx, sess)
		if err != nil {
			var merr *core.MappingError
			if errors.As(err, &merr) && !merr.Category.Fatal() {
				// Context unreachable: all its children are absent.
				logger.Warn("context %s unreachable (%v), marking %d controls absent", screenCtx.Name, err, len(screenCtx.Tasks))
				e.markAllAbsent(screenCtx, sess)
				continue
			}
			return err
		}

		for _, control := range screenCtx.Tasks {
			if err := ctx.Err(); err != nil {
				return err
			}
			frame, err = e.resolveTask(ctx, control, frame, sess)
			if err != nil {
				return err
			}
		}

		if err := e.exitContext(ctx, screenCtx); err != nil {
			return err
		}
	}

	sess.SetComplete()
	return nil
}

// enterContext issues the context's navigation taps, verifying each one
// against the pre-tap frame. It returns the frame showing the open context.
// Failure to reach the context comes back as a non-fatal resolution or
// verification error; bridge faults and cancellation stay fatal.
func (e *Engine) enterContext(ctx context.Context, screenCtx Context, sess *session.Session) (*core.Frame, error) {
	frame, err := e.screenshot(ctx)
	if err != nil {
		return nil, err
	}

	for i, entry := range screenCtx.Entry {
		target, ok := sess.Resolved(entry)
		if !ok {
			// The navigation control itself was never found; the
			// context is unreachable by construction.
			if err := e.pressBack(ctx, i); err != nil {
				return nil, err
			}
			return nil, core.ErrResolutionFailed.WithMessage(
				fmt.Sprintf("entry control %s is not resolved", entry))
		}

		verified := false
		for attempt := 1; attempt <= e.maxAttempts; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := e.tap(ctx, target); err != nil {
				return nil, err
			}
			e.settle(ctx)

			after, err := e.screenshot(ctx)
			if err != nil {
				return nil, err
			}
			if e.comparator.Differs(frame, after) {
				frame = after
				verified = true
				break
			}
			logger.Debug("context %s: tap on %s produced no UI change (attempt %d/%d)", screenCtx.Name, entry, attempt, e.maxAttempts)
		}
		if !verified {
			// Undo the entry taps that did verify, so the next context
			// navigates from the home screen rather than a half-open menu.
			if err := e.pressBack(ctx, i); err != nil {
				return nil, err
			}
			return nil, core.ErrVerificationTimeout.WithMessage(
				fmt.Sprintf("tap on %s produced no UI change in %d attempts", entry, e.maxAttempts))
		}
	}

	return frame, nil
}

// resolveTask attempts to resolve one control within its retry budget,
// committing the outcome (coordinate, scalar, or absence) exactly once.
// It returns the frame to use for subsequent tasks, which may be a fresh
// capture after failed attempts.
func (e *Engine) resolveTask(ctx context.Context, control core.ControlName, frame *core.Frame, sess *session.Session) (*core.Frame, error) {
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidate, err := e.resolver.Resolve(ctx, control, frame, sess)
		if err == nil {
			if candidate.Scalar {
				err = sess.CommitScalar(control, candidate.Value)
			} else {
				err = sess.Commit(control, candidate.Point)
			}
			if err != nil {
				return nil, err
			}
			logger.Info("resolved %s (attempt %d)", control, attempt)
			return frame, nil
		}

		logger.Debug("resolve %s failed (attempt %d/%d): %v", control, attempt, e.maxAttempts, err)
		if attempt == e.maxAttempts {
			break
		}

		// Give animations a moment and retry on a fresh capture.
		e.settle(ctx)
		frame, err = e.screenshot(ctx)
		if err != nil {
			return nil, err
		}
	}

	logger.Warn("recording %s as absent after %d attempts", control, e.maxAttempts)
	if err := sess.MarkAbsent(control); err != nil {
		return nil, err
	}
	return frame, nil
}

// exitContext returns to the home screen with back navigation.
func (e *Engine) exitContext(ctx context.Context, screenCtx Context) error {
	return e.pressBack(ctx, screenCtx.ExitBacks)
}

// pressBack issues n back presses with settle delays.
func (e *Engine) pressBack(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := e.adapter.Back(ctx); err != nil {
			return core.ErrDeviceUnreachable.WithCause(err)
		}
		e.settle(ctx)
	}
	return nil
}

// markAllAbsent records absence for every not-yet-attempted task of an
// unreachable context.
func (e *Engine) markAllAbsent(screenCtx Context, sess *session.Session) {
	for _, control := range screenCtx.Tasks {
		if sess.Attempted(control) {
			continue
		}
		if err := sess.MarkAbsent(control); err != nil {
			logger.Error("mark %s absent: %v", control, err)
		}
	}
}

func (e *Engine) tap(ctx context.Context, target core.Coordinate) error {
	if err := e.adapter.Tap(ctx, target.X, target.Y); err != nil {
		return core.ErrDeviceUnreachable.WithCause(err)
	}
	return nil
}

func (e *Engine) screenshot(ctx context.Context) (*core.Frame, error) {
	frame, err := e.adapter.Screenshot(ctx)
	if err != nil {
		return nil, core.ErrDeviceUnreachable.WithCause(err)
	}
	return frame, nil
}

// settle pauses for the configured delay, returning early on cancellation.
func (e *Engine) settle(ctx context.Context) {
	if e.settleDelay == 0 {
		return
	}
	select {
	case <-time.After(e.settleDelay):
	case <-ctx.Done():
	}
}
