package gesture

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/chutki/internal/tracking"
)

// rig wires a scripted provider to a detector with default thresholds.
// The hand starts present with the fingers apart: thumb base at
// (0, 0.05, 0), thumb tip at (0.2, 0, 0), middle tip at the origin.
type rig struct {
	p *tracking.ScriptedProvider
	d *Detector
}

func newRig() *rig {
	p := tracking.NewScriptedProvider()
	p.SetPresent(tracking.RightHand, true)
	p.SetJoint(tracking.RightHand, tracking.ThumbCMC, r3.Vec{Y: 0.05})
	p.SetJoint(tracking.RightHand, tracking.ThumbTip, r3.Vec{X: 0.2})
	p.SetJoint(tracking.RightHand, tracking.MiddleTip, r3.Vec{})
	return &rig{p: p, d: NewDetector(p, DefaultConfig())}
}

// tick advances the clock by dt seconds and runs one detector tick.
func (r *rig) tick(dt float64) {
	r.p.Advance(dt)
	r.d.Tick()
}

// toReady drives the rig from startup into Ready with the fingers
// close and stationary, so the velocity window starts out clean.
func (r *rig) toReady(t *testing.T) {
	t.Helper()
	r.p.SetJoint(tracking.RightHand, tracking.ThumbTip, r3.Vec{X: 0.02})

	r.tick(0.1) // uninitialized -> idle
	if r.d.State() != StateIdle {
		t.Fatalf("expected idle after hand appeared, got %s", r.d.State())
	}
	r.tick(0.1) // idle -> ready, fingers at 0.02 m
	if r.d.State() != StateReady {
		t.Fatalf("expected ready with fingers at 0.02 m, got %s", r.d.State())
	}
	r.tick(0.1) // stationary: velocity zero, still ready
	if r.d.State() != StateReady {
		t.Fatalf("expected ready to hold while stationary, got %s", r.d.State())
	}
}

// toSnapping drives the rig into Snapping via a fast thumb-tip motion
// of 0.08 m/s, above the 0.05 m/s threshold once the window fills.
func (r *rig) toSnapping(t *testing.T) {
	t.Helper()
	r.toReady(t)

	y := 0.0
	for i := 0; i < 6; i++ {
		y += 0.008
		r.p.SetJoint(tracking.RightHand, tracking.ThumbTip, r3.Vec{X: 0.02, Y: y})
		r.tick(0.1)
		if r.d.State() == StateSnapping {
			return
		}
	}
	t.Fatalf("expected snapping after fast motion, still %s", r.d.State())
}

func TestDetector_StartsUninitialized(t *testing.T) {
	r := newRig()
	r.p.SetPresent(tracking.RightHand, false)

	if r.d.State() != StateUninitialized {
		t.Fatalf("expected initial state uninitialized, got %s", r.d.State())
	}
	r.tick(0.1)
	if r.d.State() != StateUninitialized {
		t.Errorf("expected uninitialized while hand absent, got %s", r.d.State())
	}
}

func TestDetector_HandAppears(t *testing.T) {
	r := newRig()
	r.p.SetPresent(tracking.RightHand, false)
	r.tick(0.1)

	r.p.SetPresent(tracking.RightHand, true)
	r.tick(0.1)
	if r.d.State() != StateIdle {
		t.Errorf("expected idle once hand is present, got %s", r.d.State())
	}
}

func TestDetector_OneTransitionPerTick(t *testing.T) {
	r := newRig()
	// Fingers already close when the hand appears: the first tick must
	// only move uninitialized -> idle, not fall through to ready.
	r.p.SetJoint(tracking.RightHand, tracking.ThumbTip, r3.Vec{X: 0.02})

	r.tick(0.1)
	if r.d.State() != StateIdle {
		t.Fatalf("expected exactly one transition to idle, got %s", r.d.State())
	}
	r.tick(0.1)
	if r.d.State() != StateReady {
		t.Errorf("expected ready on the following tick, got %s", r.d.State())
	}
}

func TestDetector_IdleToReady(t *testing.T) {
	r := newRig()
	r.tick(0.1) // -> idle

	// Fingers apart: stays idle.
	r.tick(0.1)
	if r.d.State() != StateIdle {
		t.Fatalf("expected idle with fingers apart, got %s", r.d.State())
	}

	// Fingers at 0.02 m, under the 0.03 m threshold.
	r.p.SetJoint(tracking.RightHand, tracking.ThumbTip, r3.Vec{X: 0.02})
	r.tick(0.1)
	if r.d.State() != StateReady {
		t.Errorf("expected ready with fingers at 0.02 m, got %s", r.d.State())
	}
}

func TestDetector_ReadyToSnapping(t *testing.T) {
	r := newRig()
	r.toSnapping(t)
}

func TestDetector_ReadyBackToIdleOnSeparation(t *testing.T) {
	r := newRig()
	r.toReady(t)

	// Separate slowly (0.01 m/s, well under the velocity threshold)
	// until the distance passes 1.5 x 0.03 = 0.045 m.
	x := 0.02
	for i := 0; i < 6; i++ {
		x += 0.01
		r.p.SetJoint(tracking.RightHand, tracking.ThumbTip, r3.Vec{X: x})
		r.tick(1.0)
		if r.d.State() == StateIdle {
			if x <= 0.045 {
				t.Fatalf("left ready at %v m, inside the separation threshold", x)
			}
			return
		}
		if r.d.State() != StateReady {
			t.Fatalf("unexpected state %s while separating slowly", r.d.State())
		}
	}
	t.Fatalf("expected idle after fingers separated past 0.045 m, still %s", r.d.State())
}

func TestDetector_SnapCompletes(t *testing.T) {
	r := newRig()

	var events []Event
	r.d.OnSnapCompleted = func(e Event) { events = append(events, e) }

	r.toSnapping(t)
	if len(events) != 0 {
		t.Fatalf("snap completed prematurely: %d events", len(events))
	}

	// Thumb base reaches the middle tip: 0.02 m, under the 0.03 m
	// completion threshold.
	r.p.SetJoint(tracking.RightHand, tracking.ThumbCMC, r3.Vec{Y: 0.02})
	r.tick(0.1)

	if r.d.State() != StateIdle {
		t.Errorf("expected idle after completion, got %s", r.d.State())
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly one snap event, got %d", len(events))
	}
	if events[0].Hand != tracking.RightHand {
		t.Errorf("expected event for right hand, got %s", events[0].Hand)
	}
	if events[0].ID == "" {
		t.Error("expected event to carry an ID")
	}

	// Staying put must not re-trigger.
	r.tick(0.1)
	if len(events) != 1 {
		t.Errorf("snap event fired again without a new gesture: %d events", len(events))
	}
}

func TestDetector_SnappingPersistsWithoutCompletion(t *testing.T) {
	r := newRig()
	r.toSnapping(t)

	// No completion and no timeout: snapping holds indefinitely.
	for i := 0; i < 50; i++ {
		r.tick(0.1)
	}
	if r.d.State() != StateSnapping {
		t.Errorf("expected snapping to persist without completion, got %s", r.d.State())
	}
}

func TestDetector_HandLostResetsFromAnyState(t *testing.T) {
	drive := map[string]func(*rig, *testing.T){
		"idle":     func(r *rig, t *testing.T) { r.tick(0.1) },
		"ready":    func(r *rig, t *testing.T) { r.toReady(t) },
		"snapping": func(r *rig, t *testing.T) { r.toSnapping(t) },
	}

	for name, fn := range drive {
		t.Run(name, func(t *testing.T) {
			r := newRig()
			fn(r, t)

			r.p.SetPresent(tracking.RightHand, false)
			r.tick(0.1)
			if r.d.State() != StateUninitialized {
				t.Errorf("expected uninitialized after hand loss from %s, got %s", name, r.d.State())
			}
		})
	}
}

func TestDetector_StateChangeCallback(t *testing.T) {
	r := newRig()

	var transitions [][2]State
	r.d.OnStateChange = func(prev, next State) {
		transitions = append(transitions, [2]State{prev, next})
	}

	r.p.SetJoint(tracking.RightHand, tracking.ThumbTip, r3.Vec{X: 0.02})
	r.tick(0.1) // uninitialized -> idle
	r.tick(0.1) // idle -> ready

	want := [][2]State{
		{StateUninitialized, StateIdle},
		{StateIdle, StateReady},
	}
	if len(transitions) != len(want) {
		t.Fatalf("expected %d transitions, got %d: %v", len(want), len(transitions), transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d: expected %v, got %v", i, want[i], transitions[i])
		}
	}
}

func TestDetector_NoTransitionWithoutJointData(t *testing.T) {
	// Hand present but every joint unavailable: distance queries have
	// no data and the detector must simply hold its state.
	r := newRig()
	r.p.ClearJoint(tracking.RightHand, tracking.ThumbCMC)
	r.p.ClearJoint(tracking.RightHand, tracking.ThumbTip)
	r.p.ClearJoint(tracking.RightHand, tracking.MiddleTip)

	r.tick(0.1) // -> idle, no samples recorded
	r.tick(0.1)
	if r.d.State() != StateIdle {
		t.Errorf("expected idle to hold with no joint data, got %s", r.d.State())
	}
}

func TestDetector_ApplyTuning(t *testing.T) {
	r := newRig()

	cfg := r.d.Config()
	cfg.ReadyDistance = 0.01
	cfg.Velocity = 0.2
	cfg.CompletedDistance = 0.005
	r.d.ApplyTuning(cfg)

	got := r.d.Config()
	if got.ReadyDistance != 0.01 || got.Velocity != 0.2 || got.CompletedDistance != 0.005 {
		t.Errorf("tuning not applied: %+v", got)
	}
	if got.TrackedHand != tracking.RightHand || got.Window != DefaultWindow {
		t.Errorf("hand/window must not change via tuning: %+v", got)
	}

	// Fingers at 0.02 m no longer arm the detector with the tighter
	// 0.01 m threshold.
	r.p.SetJoint(tracking.RightHand, tracking.ThumbTip, r3.Vec{X: 0.02})
	r.tick(0.1) // -> idle
	r.tick(0.1)
	if r.d.State() != StateIdle {
		t.Errorf("expected idle with tightened threshold, got %s", r.d.State())
	}
}
