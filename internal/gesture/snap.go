package gesture

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/google/uuid"

	"github.com/ayusman/chutki/internal/tracking"
)

// State represents the snap detector's current phase.
type State string

const (
	// StateUninitialized means the tracked hand is not (yet) available.
	StateUninitialized State = "uninitialized"
	// StateIdle means the hand is tracked and no gesture has started.
	StateIdle State = "idle"
	// StateReady means thumb tip and middle tip are close enough for a
	// snap to begin.
	StateReady State = "ready"
	// StateSnapping means a fast closing motion has been detected.
	StateSnapping State = "snapping"
)

// SeparationFactor scales ReadyDistance into the Ready exit threshold.
// The wider exit threshold gives the Idle/Ready boundary hysteresis so
// fingers hovering near ReadyDistance don't oscillate the state.
const SeparationFactor = 1.5

// Config holds the tunable parameters of the snap detector.
type Config struct {
	// TrackedHand is the hand identity to monitor.
	TrackedHand tracking.Hand

	// ReadyDistance is the thumb-tip to middle-tip distance in meters
	// below which the detector arms (Idle to Ready).
	ReadyDistance float64

	// Velocity is the thumb-tip to middle-tip relative speed in
	// meters/second above which the detector trips (Ready to Snapping).
	Velocity float64

	// CompletedDistance is the thumb-base to middle-tip distance in
	// meters below which the snap completes (Snapping to Idle).
	CompletedDistance float64

	// Window is the per-joint history size in samples.
	Window int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		TrackedHand:       tracking.RightHand,
		ReadyDistance:     0.03,
		Velocity:          0.05,
		CompletedDistance: 0.03,
		Window:            DefaultWindow,
	}
}

// Event describes one completed snap gesture.
type Event struct {
	ID   string        `json:"id"`
	Hand tracking.Hand `json:"hand"`
	Time float64       `json:"time"` // provider's monotonic clock, seconds
}

// Detector is the snap-gesture state machine. It owns three joint
// histories (thumb base, thumb tip, middle fingertip) for one hand and
// advances once per Tick call; it is single-owner and must only be
// driven from one goroutine.
type Detector struct {
	cfg      Config
	provider tracking.Provider

	state     State
	thumbBase *JointHistory
	thumbTip  *JointHistory
	middleTip *JointHistory

	// OnStateChange, if set, is called synchronously whenever Tick
	// moves the detector to a new state.
	OnStateChange func(prev, next State)

	// OnSnapCompleted, if set, is called synchronously during the tick
	// that detects gesture completion.
	OnSnapCompleted func(Event)
}

// NewDetector creates a snap detector driven by the given provider.
func NewDetector(p tracking.Provider, cfg Config) *Detector {
	if cfg.TrackedHand == "" {
		cfg.TrackedHand = tracking.RightHand
	}
	if cfg.Window < 2 {
		cfg.Window = DefaultWindow
	}
	return &Detector{
		cfg:       cfg,
		provider:  p,
		state:     StateUninitialized,
		thumbBase: NewJointHistory(cfg.TrackedHand, tracking.ThumbCMC, cfg.Window),
		thumbTip:  NewJointHistory(cfg.TrackedHand, tracking.ThumbTip, cfg.Window),
		middleTip: NewJointHistory(cfg.TrackedHand, tracking.MiddleTip, cfg.Window),
	}
}

// State returns the detector's current state.
func (d *Detector) State() State {
	return d.state
}

// Config returns the detector's current configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// ApplyTuning replaces the detector's thresholds. The tracked hand and
// window size are fixed at construction and ignored here; changing
// them requires a new detector so the histories stay coherent.
func (d *Detector) ApplyTuning(cfg Config) {
	d.cfg.ReadyDistance = cfg.ReadyDistance
	d.cfg.Velocity = cfg.Velocity
	d.cfg.CompletedDistance = cfg.CompletedDistance
}

// Tick advances the state machine by one step:
//
//  1. If the tracked hand is absent, reset to uninitialized; the
//     histories are not updated this tick.
//  2. If the hand just reappeared, move uninitialized to idle. That is
//     this tick's one transition.
//  3. Otherwise update all three joint histories and evaluate the
//     current state's exit conditions in order, applying at most one
//     transition. A newly entered state is not re-evaluated within the
//     same tick.
//
// Hand loss is a normal recurring condition, never an error, and no
// failure crosses the tick boundary.
func (d *Detector) Tick() {
	if !d.provider.HandPresent(d.cfg.TrackedHand) {
		d.setState(StateUninitialized)
		return
	}

	if d.state == StateUninitialized {
		d.setState(StateIdle)
		d.updateHistories()
		return
	}

	d.updateHistories()

	switch d.state {
	case StateIdle:
		dist, err := Distance(d.thumbTip, d.middleTip)
		if err != nil {
			return
		}
		if dist < d.cfg.ReadyDistance {
			d.setState(StateReady)
		}

	case StateReady:
		rel := RelativeVelocity(d.thumbTip, d.middleTip)
		if r3.Norm(rel) > d.cfg.Velocity {
			d.setState(StateSnapping)
			return
		}
		dist, err := Distance(d.thumbTip, d.middleTip)
		if err != nil {
			return
		}
		if dist > SeparationFactor*d.cfg.ReadyDistance {
			// Fingers separated again without snapping.
			d.setState(StateIdle)
		}

	case StateSnapping:
		// TODO: fall back out of Snapping after ~0.3s without
		// completion; target state (Idle vs Ready) still undecided.
		dist, err := Distance(d.thumbBase, d.middleTip)
		if err != nil {
			return
		}
		if dist < d.cfg.CompletedDistance {
			d.setState(StateIdle)
			if d.OnSnapCompleted != nil {
				d.OnSnapCompleted(Event{
					ID:   uuid.NewString(),
					Hand: d.cfg.TrackedHand,
					Time: d.provider.Now(),
				})
			}
		}
	}
}

// updateHistories pulls one fresh sample into each joint history.
func (d *Detector) updateHistories() {
	d.thumbBase.Update(d.provider)
	d.thumbTip.Update(d.provider)
	d.middleTip.Update(d.provider)
}

// setState moves the detector to next, firing OnStateChange if the
// state actually changed.
func (d *Detector) setState(next State) {
	if d.state == next {
		return
	}
	prev := d.state
	d.state = next
	if d.OnStateChange != nil {
		d.OnStateChange(prev, next)
	}
}
