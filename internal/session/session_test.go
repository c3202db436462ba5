package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/san-kum/episim/internal/dynamo"
	"github.com/san-kum/episim/internal/epidemic"
)

type recorder struct {
	calls []*epidemic.Trajectory
	times []float64
}

func (r *recorder) Render(times []float64, tr *epidemic.Trajectory) {
	r.times = times
	r.calls = append(r.calls, tr)
}

func newTestSession(t *testing.T, opts ...Option) (*Session, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	s := New(epidemic.DefaultSimulator(), epidemic.DefaultInitialState(), dynamo.Linspace(0, 100, 101), 1,
		epidemic.DefaultParams(), rec, opts...)
	t.Cleanup(s.Close)
	return s, rec
}

func TestStartPublishes(t *testing.T) {
	s, rec := newTestSession(t)

	if s.Trajectory() != nil {
		t.Fatal("expected no trajectory before Start")
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(rec.calls) != 1 {
		t.Fatalf("expected 1 render, got %d", len(rec.calls))
	}
	if len(rec.times) != 101 {
		t.Errorf("expected 101 times, got %d", len(rec.times))
	}
	if s.Trajectory() != rec.calls[0] {
		t.Error("published trajectory differs from rendered one")
	}
}

func TestApplyReplacesEditableRates(t *testing.T) {
	s, rec := newTestSession(t)
	base := s.Params()

	if err := s.Apply(Update{Beta: 0.3, Gamma: 0.1, Mu: 0.02}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	got := s.Params()
	if got.Beta != 0.3 || got.Gamma != 0.1 || got.Mu != 0.02 {
		t.Errorf("editable rates not applied: %+v", got)
	}
	if got.Omega != base.Omega {
		t.Errorf("omega changed from %v to %v without tracking", base.Omega, got.Omega)
	}
	if got.Epsilon != base.Epsilon {
		t.Errorf("epsilon changed from %v to %v", base.Epsilon, got.Epsilon)
	}
	if len(rec.calls) != 1 {
		t.Fatalf("expected 1 render, got %d", len(rec.calls))
	}
	if rec.calls[0].Params != got {
		t.Error("rendered trajectory was solved with different params")
	}
}

func TestApplyFailureKeepsPrevious(t *testing.T) {
	s, rec := newTestSession(t)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	prevParams, prevTr := s.Params(), s.Trajectory()

	err := s.Apply(Update{Beta: -0.1, Gamma: 0.07, Mu: 0.01})
	if !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if s.Params() != prevParams {
		t.Error("params changed after failed solve")
	}
	if s.Trajectory() != prevTr {
		t.Error("trajectory changed after failed solve")
	}
	if len(rec.calls) != 1 {
		t.Errorf("expected no render for the failed solve, got %d renders", len(rec.calls))
	}
}

func TestTrackOmega(t *testing.T) {
	s, _ := newTestSession(t, WithTrackOmega(epidemic.OmegaBaseline))

	if err := s.Apply(Update{Beta: 0.22, Gamma: 0.04, Mu: 0.01}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, want := s.Params().Omega, epidemic.OmegaBaseline-0.04; got != want {
		t.Errorf("omega = %v, want %v", got, want)
	}

	err := s.Apply(Update{Beta: 0.22, Gamma: 0.2, Mu: 0.01})
	var perr *dynamo.ParameterError
	if !errors.As(err, &perr) || perr.Name != "omega" {
		t.Errorf("expected omega parameter error, got %v", err)
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	s, rec := newTestSession(t)

	older := s.Begin(Update{Beta: 0.1, Gamma: 0.07, Mu: 0.01})
	newer := s.Begin(Update{Beta: 0.3, Gamma: 0.07, Mu: 0.01})

	if !errors.Is(older.Context().Err(), context.Canceled) {
		t.Error("expected the older ticket to be canceled")
	}

	trNew, err := s.Run(newer)
	if err != nil {
		t.Fatalf("run newer: %v", err)
	}
	if err := s.Complete(newer, trNew, nil); err != nil {
		t.Fatalf("complete newer: %v", err)
	}

	// The older solve finishing late must not overwrite the newer result.
	trOld, _ := epidemic.DefaultSimulator().Solve(epidemic.DefaultInitialState(), s.Times(), 1, older.Params())
	if err := s.Complete(older, trOld, nil); !errors.Is(err, ErrSuperseded) {
		t.Errorf("expected ErrSuperseded, got %v", err)
	}

	if s.Params().Beta != 0.3 {
		t.Errorf("expected beta 0.3 to remain published, got %v", s.Params().Beta)
	}
	if len(rec.calls) != 1 || rec.calls[0] != trNew {
		t.Error("expected only the newer trajectory to be rendered")
	}
}

func TestRunCanceledTicket(t *testing.T) {
	s, _ := newTestSession(t)

	older := s.Begin(Update{Beta: 0.1, Gamma: 0.07, Mu: 0.01})
	s.Begin(Update{Beta: 0.2, Gamma: 0.07, Mu: 0.01})

	if _, err := s.Run(older); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// gateHandler blocks the first "solved" record until release is closed, which
// holds that solve between Run and Complete.
type gateHandler struct {
	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func newGateHandler() *gateHandler {
	return &gateHandler{reached: make(chan struct{}), release: make(chan struct{})}
}

func (h *gateHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *gateHandler) Handle(_ context.Context, r slog.Record) error {
	if r.Message != "solved" {
		return nil
	}
	first := false
	h.once.Do(func() { first = true })
	if first {
		close(h.reached)
		<-h.release
	}
	return nil
}

func (h *gateHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *gateHandler) WithGroup(string) slog.Handler      { return h }

func TestStartFinishingAfterApplyIsDiscarded(t *testing.T) {
	gate := newGateHandler()
	rec := &recorder{}
	s := New(epidemic.DefaultSimulator(), epidemic.DefaultInitialState(), dynamo.Linspace(0, 100, 101), 1,
		epidemic.DefaultParams(), rec, WithLogger(slog.New(gate)))
	t.Cleanup(s.Close)

	started := make(chan error, 1)
	go func() { started <- s.Start(context.Background()) }()
	<-gate.reached

	if err := s.Apply(Update{Beta: 0.4, Gamma: 0.07, Mu: 0.01}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	close(gate.release)

	if err := <-started; !errors.Is(err, ErrSuperseded) {
		t.Errorf("expected ErrSuperseded from the late start, got %v", err)
	}
	if got := s.Params().Beta; got != 0.4 {
		t.Errorf("beta = %v, want 0.4 to stay published", got)
	}
	if len(rec.calls) != 1 || rec.calls[0].Params.Beta != 0.4 {
		t.Errorf("expected only the edited trajectory to be rendered, got %d renders", len(rec.calls))
	}
}

func TestRendererFunc(t *testing.T) {
	var got int
	r := RendererFunc(func(times []float64, tr *epidemic.Trajectory) { got = len(times) })
	r.Render([]float64{0, 1, 2}, nil)
	if got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}
