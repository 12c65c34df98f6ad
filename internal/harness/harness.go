package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/rollcall/internal/attendance"
	"github.com/roach88/rollcall/internal/cache"
	"github.com/roach88/rollcall/internal/roster"
	"github.com/roach88/rollcall/internal/testutil"
	"github.com/roach88/rollcall/internal/workbook"
)

// errInvalidArg marks a step argument that could not be parsed.
var errInvalidArg = errors.New("invalid argument")

// Harness is the test execution engine.
// It runs scenarios against a store writing through to an in-memory cache.
type Harness struct {
	cache  *cache.Cache
	store  *attendance.Store
	clock  *testutil.DeterministicClock
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory cache and an uninitialized store
// 2. Execute setup steps, which must all succeed
// 3. Execute flow steps, checking each outcome against its expect clause
// 4. Capture the final columns and summary
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	clock := testutil.NewDeterministicClock()
	c, err := cache.Open(":memory:", cache.WithClock(clock.Now))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory cache: %w", err)
	}
	defer c.Close()

	h := &Harness{
		cache:  c,
		clock:  clock,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	h.store = h.newStore()

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Setup {
		outcome, _ := h.execute(ctx, step, result)
		if outcome != OutcomeOK {
			return nil, fmt.Errorf("setup step %d (%s): outcome %s", i, step.Op, outcome)
		}
	}

	for i, step := range scenario.Flow {
		want := OutcomeOK
		if step.Expect != nil {
			want = step.Expect.Outcome
		}
		outcome, err := h.execute(ctx, step, result)
		if outcome != want {
			msg := fmt.Sprintf("flow step %d (%s): expected outcome %s, got %s", i, step.Op, want, outcome)
			if err != nil {
				msg += fmt.Sprintf(" (%v)", err)
			}
			result.AddError(msg)
		}
		h.logger.Info("flow step completed", "step", i, "op", step.Op, "outcome", outcome)
	}

	if h.store.Loaded() {
		m, err := h.store.Matrix()
		if err != nil {
			return nil, fmt.Errorf("failed to read matrix: %w", err)
		}
		result.Columns = m.Columns()
		rows, err := h.store.Summary(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to compute summary: %w", err)
		}
		result.Summary = rows
	}

	actx := &AssertionContext{
		Store: h.store,
		Cache: h.cache,
		Ctx:   ctx,
		NewStore: func() *attendance.Store {
			return h.newStore()
		},
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

func (h *Harness) newStore() *attendance.Store {
	return attendance.New(h.cache, attendance.WithLogger(h.logger))
}

// execute runs one step, records it in the trace and returns its outcome.
func (h *Harness) execute(ctx context.Context, step Step, result *Result) (string, error) {
	var (
		res map[string]interface{}
		err error
	)
	ignored := false

	switch step.Op {
	case OpInit:
		err = h.store.Reset(ctx)

	case OpAddAttendee:
		err = h.store.AddAttendee(ctx, roster.Attendee{
			ID:       arg(step.Args, "id"),
			FullName: arg(step.Args, "full_name"),
			NickName: arg(step.Args, "nick_name"),
		})

	case OpUpdateAttendee:
		err = h.store.UpdateAttendee(ctx, arg(step.Args, "id"), attendance.AttendeeUpdate{
			ID:       optArg(step.Args, "new_id"),
			FullName: optArg(step.Args, "full_name"),
			NickName: optArg(step.Args, "nick_name"),
		})

	case OpDeleteAttendee:
		err = h.store.DeleteAttendee(ctx, arg(step.Args, "id"))

	case OpAddEvent:
		var from, to time.Time
		if from, to, err = eventTimes(step.Args); err == nil {
			err = h.store.AddEvent(ctx, roster.Event{
				ID:   arg(step.Args, "id"),
				Name: arg(step.Args, "name"),
				Type: arg(step.Args, "type"),
				From: from,
				To:   to,
			})
		}

	case OpUpdateEvent:
		var from, to time.Time
		if from, to, err = eventTimes(step.Args); err == nil {
			upd := attendance.EventUpdate{
				Name: optArg(step.Args, "name"),
				Type: optArg(step.Args, "type"),
			}
			if _, ok := step.Args["from"]; ok {
				upd.From = &from
			}
			if _, ok := step.Args["to"]; ok {
				upd.To = &to
			}
			err = h.store.UpdateEvent(ctx, arg(step.Args, "id"), upd)
		}

	case OpDeleteEvent:
		err = h.store.DeleteEvent(ctx, arg(step.Args, "id"))

	case OpMark:
		var mk roster.Mark
		if mk, err = roster.ParseMark(arg(step.Args, "mark")); err == nil {
			var applied bool
			applied, err = h.store.MarkAttendance(ctx, arg(step.Args, "attendee"), arg(step.Args, "event"), mk)
			res = map[string]interface{}{"applied": applied}
			ignored = err == nil && !applied
		}

	case OpRoundtrip:
		var buf bytes.Buffer
		if err = h.store.Export(&buf); err == nil {
			_, err = h.store.Import(ctx, &buf)
		}

	case OpHydrate:
		st := h.newStore()
		var ok bool
		if ok, err = st.Hydrate(ctx); err == nil && !ok {
			err = attendance.ErrNoData
		}
		if err == nil {
			h.store = st
		}

	default:
		err = fmt.Errorf("unknown op %q", step.Op)
	}

	outcome := outcomeOf(err)
	if ignored {
		outcome = OutcomeIgnored
	}
	result.AddTrace(step.Op, step.Args, outcome, res)
	return outcome, err
}

// outcomeOf classifies a store error.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, attendance.ErrDuplicateID):
		return OutcomeDuplicate
	case errors.Is(err, attendance.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, attendance.ErrNoData):
		return OutcomeNoData
	case errors.Is(err, attendance.ErrInvalidID), errors.Is(err, roster.ErrInvalidMark),
		errors.Is(err, roster.ErrTextTooLong), errors.Is(err, errInvalidArg):
		return OutcomeInvalid
	case attendance.IsCacheWriteError(err):
		return OutcomeCacheError
	}
	return OutcomeError
}

// arg returns a string argument. YAML scalars that are not strings, such as
// a bare numeric ID, are formatted.
func arg(args map[string]interface{}, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// optArg returns nil when the argument is absent.
func optArg(args map[string]interface{}, key string) *string {
	if _, ok := args[key]; !ok {
		return nil
	}
	s := arg(args, key)
	return &s
}

func eventTimes(args map[string]interface{}) (from, to time.Time, err error) {
	if from, err = workbook.ParseTime(arg(args, "from")); err != nil {
		return from, to, fmt.Errorf("%w: from: %v", errInvalidArg, err)
	}
	if to, err = workbook.ParseTime(arg(args, "to")); err != nil {
		return from, to, fmt.Errorf("%w: to: %v", errInvalidArg, err)
	}
	return from, to, nil
}
