package ui

import (
	"math"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const progressFrame = time.Second / 60

// AnimateProgressMsg starts an animation on the bar with the matching ID.
type AnimateProgressMsg struct {
	ID       string
	From     float64
	Target   float64
	Duration time.Duration
}

// AnimateProgress returns a command that eases the bar identified by id
// from one fraction to target (both 0..1) over duration.
func AnimateProgress(id string, from, target float64, duration time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AnimateProgressMsg{ID: id, From: from, Target: target, Duration: duration}
	}
}

type progressFrameMsg struct {
	id  string
	gen int
	now time.Time
}

type progressAnimation struct {
	from, target float64
	start        time.Time
	duration     time.Duration
}

// ProgressBar is a bubbles progress bar driven by AnimateProgress.
type ProgressBar struct {
	id    string
	bar   progress.Model
	value float64
	anim  *progressAnimation
	gen   int
	clock func() time.Time
}

// NewProgressBar returns a bar at 0.
func NewProgressBar(id string) *ProgressBar {
	return &ProgressBar{
		id:    id,
		bar:   progress.New(progress.WithGradient(string(ColorAccent), string(ColorGreen))),
		clock: time.Now,
	}
}

// ID identifies the bar.
func (p *ProgressBar) ID() string { return p.id }

// Value is the current fraction.
func (p *ProgressBar) Value() float64 { return p.value }

// Animating reports whether frames are still pending.
func (p *ProgressBar) Animating() bool { return p.anim != nil }

// Update handles animation messages addressed to this bar.
func (p *ProgressBar) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case AnimateProgressMsg:
		if msg.ID != p.id {
			return nil
		}
		p.gen++
		p.anim = &progressAnimation{
			from:     clamp01(msg.From),
			target:   clamp01(msg.Target),
			start:    p.clock(),
			duration: msg.Duration,
		}
		p.value = p.anim.from
		return p.tick()

	case progressFrameMsg:
		if msg.id != p.id || msg.gen != p.gen || p.anim == nil {
			return nil
		}
		v, done := p.anim.at(msg.now)
		p.value = v
		if done {
			p.anim = nil
			return nil
		}
		return p.tick()
	}
	return nil
}

func (p *ProgressBar) tick() tea.Cmd {
	id, gen := p.id, p.gen
	return tea.Tick(progressFrame, func(t time.Time) tea.Msg {
		return progressFrameMsg{id: id, gen: gen, now: t}
	})
}

// View renders the bar at width.
func (p *ProgressBar) View(width int) string {
	p.bar.Width = width
	return p.bar.ViewAs(p.value)
}

// at returns the eased value at now and whether the animation has finished.
// The final frame lands exactly on the target.
func (a *progressAnimation) at(now time.Time) (float64, bool) {
	if a.duration <= 0 {
		return a.target, true
	}
	p := float64(now.Sub(a.start)) / float64(a.duration)
	if p >= 1 {
		return a.target, true
	}
	if p < 0 {
		p = 0
	}
	return a.from + (a.target-a.from)*easeOutCubic(p), false
}

func easeOutCubic(p float64) float64 {
	return 1 - math.Pow(1-p, 3)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
