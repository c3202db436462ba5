// Package session holds the interactive state of one simulation: the
// simulator, the fixed initial condition and time grid, and the current
// parameter set. Parameter edits replace the whole set and trigger a fresh
// solve whose result is handed to a Renderer.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/episim/internal/epidemic"
)

// Renderer consumes each published trajectory together with its time grid.
type Renderer interface {
	Render(times []float64, tr *epidemic.Trajectory)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(times []float64, tr *epidemic.Trajectory)

func (f RendererFunc) Render(times []float64, tr *epidemic.Trajectory) { f(times, tr) }

// Update carries the three interactively editable rates. The remaining rates
// stay as they were at startup.
type Update struct {
	Beta  float64
	Gamma float64
	Mu    float64
}

// ErrSuperseded is returned by Complete for a result whose ticket is no
// longer the newest.
var ErrSuperseded = errors.New("session: result superseded by a newer solve")

type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithTrackOmega re-derives ω = baseline − γ on every update instead of
// keeping the startup value.
func WithTrackOmega(baseline float64) Option {
	return func(s *Session) {
		s.trackOmega = true
		s.omegaBaseline = baseline
	}
}

type Session struct {
	sim      *epidemic.Simulator
	initial  epidemic.State
	grid     []float64
	n        float64
	base     epidemic.Params
	renderer Renderer
	logger   *slog.Logger

	trackOmega    bool
	omegaBaseline float64

	mu         sync.Mutex
	params     epidemic.Params
	trajectory *epidemic.Trajectory
	generation uint64
	cancel     context.CancelFunc
}

func New(sim *epidemic.Simulator, initial epidemic.State, grid []float64, n float64, params epidemic.Params, renderer Renderer, opts ...Option) *Session {
	s := &Session{
		sim:      sim,
		initial:  initial,
		grid:     append([]float64(nil), grid...),
		n:        n,
		base:     params,
		params:   params,
		renderer: renderer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start solves with the current parameters and publishes the result. It
// takes a ticket like any edit, so a later Begin cancels it and a result
// finishing after a newer one is dropped with ErrSuperseded.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	t := s.beginLocked(ctx, s.params)
	s.mu.Unlock()

	tr, err := s.Run(t)
	return s.Complete(t, tr, err)
}

func (s *Session) Params() epidemic.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Trajectory returns the last published trajectory, or nil before the first
// successful solve.
func (s *Session) Trajectory() *epidemic.Trajectory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trajectory
}

func (s *Session) Times() []float64 { return s.grid }

// Apply solves synchronously with the updated rates. On failure the
// previously published parameters and trajectory are kept.
func (s *Session) Apply(u Update) error {
	t := s.Begin(u)
	tr, err := s.Run(t)
	return s.Complete(t, tr, err)
}

// Ticket identifies one requested solve.
type Ticket struct {
	generation uint64
	params     epidemic.Params
	ctx        context.Context
}

func (t Ticket) Params() epidemic.Params   { return t.params }
func (t Ticket) Context() context.Context { return t.ctx }

// Begin registers a new solve and cancels any older one still running.
func (s *Session) Begin(u Update) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginLocked(context.Background(), s.next(u))
}

// beginLocked requires s.mu.
func (s *Session) beginLocked(parent context.Context, p epidemic.Params) Ticket {
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.generation++

	return Ticket{generation: s.generation, params: p, ctx: ctx}
}

// Run performs the solve for t. It is safe to call from any goroutine.
func (s *Session) Run(t Ticket) (*epidemic.Trajectory, error) {
	return s.solve(t.ctx, t.params)
}

// Complete publishes the outcome of t if t is still the newest ticket.
// Stale outcomes are dropped with ErrSuperseded.
func (s *Session) Complete(t Ticket, tr *epidemic.Trajectory, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.generation != s.generation {
		s.logger.Debug("discarding stale solve", "ticket", t.generation, "current", s.generation)
		return ErrSuperseded
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if err != nil {
		s.logger.Warn("solve failed, keeping previous trajectory", "error", err,
			"beta", t.params.Beta, "gamma", t.params.Gamma, "mu", t.params.Mu)
		return err
	}
	s.publish(t.params, tr)
	return nil
}

// Close cancels any in-flight solve.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) next(u Update) epidemic.Params {
	p := s.base
	p.Beta, p.Gamma, p.Mu = u.Beta, u.Gamma, u.Mu
	if s.trackOmega {
		p.Omega = s.omegaBaseline - u.Gamma
	}
	return p
}

func (s *Session) solve(ctx context.Context, p epidemic.Params) (*epidemic.Trajectory, error) {
	start := time.Now()
	tr, err := s.sim.SolveContext(ctx, s.initial, s.grid, s.n, p)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("solved", "method", tr.Method, "points", tr.Len(),
		"accepted", tr.Stats.Accepted, "rejected", tr.Stats.Rejected, "elapsed", time.Since(start))
	return tr, nil
}

// publish requires s.mu.
func (s *Session) publish(p epidemic.Params, tr *epidemic.Trajectory) {
	s.params = p
	s.trajectory = tr
	if s.renderer != nil {
		s.renderer.Render(s.grid, tr)
	}
}
