package session

import "time"

// Curve maps effect progress in [0,1] to an amplitude.
type Curve func(progress float64) float64

// FadeOut starts at full amplitude and decays linearly to zero.
func FadeOut(progress float64) float64 {
	return clamp01(1 - progress)
}

// Pulse rises to full amplitude at the midpoint and falls back.
func Pulse(progress float64) float64 {
	if progress < 0.5 {
		return clamp01(progress * 2)
	}
	return clamp01((1 - progress) * 2)
}

// Effect is a timed visual cue such as a hit flash. Amplitude is a pure
// function of elapsed time, evaluated by whoever renders the session.
type Effect struct {
	Name      string
	StartedAt time.Duration
	Duration  time.Duration
	Curve     Curve
}

func (e Effect) expired(elapsed time.Duration) bool {
	return elapsed >= e.StartedAt+e.Duration
}

func (e Effect) amplitude(elapsed time.Duration) float64 {
	if e.Duration <= 0 || elapsed < e.StartedAt || e.expired(elapsed) {
		return 0
	}
	progress := float64(elapsed-e.StartedAt) / float64(e.Duration)
	curve := e.Curve
	if curve == nil {
		curve = FadeOut
	}
	return curve(progress)
}

// Effects is the list of active timed effects for one session, consumed by
// the tick loop.
type Effects struct {
	now    time.Duration
	active []Effect
}

// Add starts a new effect at the current session time.
func (e *Effects) Add(name string, duration time.Duration, curve Curve) {
	if e == nil || duration <= 0 {
		return
	}
	e.active = append(e.active, Effect{Name: name, StartedAt: e.now, Duration: duration, Curve: curve})
}

// Amplitude returns the strongest amplitude among active effects named name.
func (e *Effects) Amplitude(name string) float64 {
	if e == nil {
		return 0
	}
	best := 0.0
	for _, effect := range e.active {
		if effect.Name != name {
			continue
		}
		if amp := effect.amplitude(e.now); amp > best {
			best = amp
		}
	}
	return best
}

// Len returns the number of effects still running.
func (e *Effects) Len() int {
	if e == nil {
		return 0
	}
	return len(e.active)
}

// advance moves the effect clock and drops finished effects.
func (e *Effects) advance(elapsed time.Duration) {
	e.now = elapsed
	kept := e.active[:0]
	for _, effect := range e.active {
		if !effect.expired(elapsed) {
			kept = append(kept, effect)
		}
	}
	e.active = kept
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
