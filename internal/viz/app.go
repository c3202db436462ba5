package viz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/episim/internal/epidemic"
	"github.com/san-kum/episim/internal/session"
)

const (
	Step     = 0.005
	FineStep = 0.001
)

// Frame is the Renderer the TUI hands to its session. It keeps the most
// recently published trajectory for View to draw.
type Frame struct {
	mu    sync.Mutex
	times []float64
	tr    *epidemic.Trajectory
}

func NewFrame() *Frame { return &Frame{} }

func (f *Frame) Render(times []float64, tr *epidemic.Trajectory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.times, f.tr = times, tr
}

func (f *Frame) Snapshot() ([]float64, *epidemic.Trajectory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.times, f.tr
}

type slider struct {
	label string
	value float64
}

type startedMsg struct{ err error }

type solvedMsg struct {
	ticket session.Ticket
	tr     *epidemic.Trajectory
	err    error
}

// App is the interactive slider program.
type App struct {
	sess    *session.Session
	frame   *Frame
	sliders []slider
	initial []slider
	cursor  int
	solving bool
	err     error
	theme   int
	width   int
	height  int
}

// NewApp builds the program for sess, which must publish to frame.
func NewApp(sess *session.Session, frame *Frame) App {
	p := sess.Params()
	sliders := []slider{
		{label: "rate of spread", value: p.Beta},
		{label: "rate of recovery", value: p.Gamma},
		{label: "population grow", value: p.Mu},
	}
	return App{
		sess:    sess,
		frame:   frame,
		sliders: sliders,
		initial: append([]slider(nil), sliders...),
		width:   80,
		height:  24,
	}
}

func (a App) Init() tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		return startedMsg{err: sess.Start(context.Background())}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
	case startedMsg:
		if !errors.Is(msg.err, session.ErrSuperseded) {
			a.err = msg.err
		}
	case solvedMsg:
		err := a.sess.Complete(msg.ticket, msg.tr, msg.err)
		if errors.Is(err, session.ErrSuperseded) {
			return a, nil
		}
		a.solving, a.err = false, err
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		a.sess.Close()
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.sliders)-1 {
			a.cursor++
		}
	case "left", "h":
		return a.nudge(-Step)
	case "right", "l":
		return a.nudge(Step)
	case "shift+left", "H":
		return a.nudge(-FineStep)
	case "shift+right", "L":
		return a.nudge(FineStep)
	case "r":
		a.sliders = append([]slider(nil), a.initial...)
		return a, a.request()
	case "t":
		a.theme = (a.theme + 1) % len(Themes)
	}
	return a, nil
}

// nudge moves the selected slider and requests a solve if its value changed.
func (a App) nudge(delta float64) (App, tea.Cmd) {
	s := &a.sliders[a.cursor]
	v := epidemic.SliderRange.Clamp(math.Round((s.value+delta)*1e6) / 1e6)
	if v == s.value {
		return a, nil
	}
	a.sliders = append([]slider(nil), a.sliders...)
	a.sliders[a.cursor].value = v
	return a, a.request()
}

func (a *App) request() tea.Cmd {
	t := a.sess.Begin(a.Rates())
	a.solving = true
	sess := a.sess
	return func() tea.Msg {
		tr, err := sess.Run(t)
		return solvedMsg{ticket: t, tr: tr, err: err}
	}
}

// Rates is the session update described by the current slider values.
func (a App) Rates() session.Update {
	return session.Update{
		Beta:  a.sliders[0].value,
		Gamma: a.sliders[1].value,
		Mu:    a.sliders[2].value,
	}
}

func (a App) View() string {
	theme := Themes[a.theme]
	st := newStyles(theme)
	var b strings.Builder

	b.WriteString("\n  " + st.title.Render("EPISIM") + "  " + st.subtle.Render("S/I/R/D epidemic model") + "\n\n")

	times, tr := a.frame.Snapshot()
	chartHeight := a.height - 16
	if chartHeight < 5 {
		chartHeight = 5
	}
	if tr != nil {
		b.WriteString(Chart(times, tr, a.width-14, chartHeight, theme))
		b.WriteString("\n\n")
	} else {
		b.WriteString(st.subtle.Render("  solving…") + "\n\n")
	}

	b.WriteString(separator(st, a.width-4) + "\n\n")

	for i, s := range a.sliders {
		bar := SliderBar(s.value, epidemic.SliderRange.Min, epidemic.SliderRange.Max, 30)
		cursor, label := "  ", st.label.Render(fmt.Sprintf("%-17s", s.label))
		if i == a.cursor {
			cursor, label = st.value.Render("▸ "), st.selected.Render(fmt.Sprintf("%-17s", s.label))
		}
		b.WriteString(fmt.Sprintf("  %s%s %s %s\n", cursor, label, st.subtle.Render(bar), st.value.Render(fmt.Sprintf("%.3f", s.value))))
	}
	b.WriteString("\n")

	b.WriteString("  " + a.status(st, tr) + "\n\n")
	b.WriteString("  " + st.keyHint.Render("j/k select  h/l adjust  H/L fine  r reset  t theme  q quit") + "\n")
	return b.String()
}

func (a App) status(st styles, tr *epidemic.Trajectory) string {
	if a.err != nil {
		return st.err.Render("error: " + a.err.Error())
	}
	if a.solving {
		return st.running.Render("solving…")
	}
	if tr == nil {
		return ""
	}
	idx, peak := tr.Peak(epidemic.Infected)
	return fmt.Sprintf("%s %s   %s %s at t=%s   %s %s",
		st.label.Render("R0"), st.value.Render(fmt.Sprintf("%.2f", tr.Params.R0())),
		st.label.Render("peak I"), st.value.Render(fmt.Sprintf("%.4f", peak)), st.value.Render(fmt.Sprintf("%.1f", tr.Times[idx])),
		st.label.Render("final D"), st.value.Render(fmt.Sprintf("%.4f", tr.Final().D)))
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(sess *session.Session, frame *Frame) error {
	_, err := tea.NewProgram(NewApp(sess, frame), tea.WithAltScreen()).Run()
	return err
}
