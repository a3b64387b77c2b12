// Package gesture provides snap-gesture detection from hand-joint pose streams.
package gesture

import (
	"errors"
	"log"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/chutki/internal/tracking"
)

// DefaultWindow is the number of samples a JointHistory retains.
const DefaultWindow = 5

// ErrNoSamples is returned when a kinematic query needs at least one
// recorded sample and the buffer is empty.
var ErrNoSamples = errors.New("joint history has no samples")

// TimestampedPose is one recorded pose sample. Immutable once recorded.
type TimestampedPose struct {
	Pose tracking.Pose
	Time float64 // monotonic seconds
}

// JointHistory keeps a fixed-capacity FIFO window of recent pose
// samples for one joint on one hand and derives kinematics from it.
// When the window is full, recording a new sample evicts the oldest.
type JointHistory struct {
	hand  tracking.Hand
	joint tracking.Joint

	samples []TimestampedPose
	pos     int
	full    bool
}

// NewJointHistory creates a JointHistory for the given hand and joint.
// A window size below 2 falls back to DefaultWindow.
func NewJointHistory(hand tracking.Hand, joint tracking.Joint, window int) *JointHistory {
	if window < 2 {
		window = DefaultWindow
	}
	return &JointHistory{
		hand:    hand,
		joint:   joint,
		samples: make([]TimestampedPose, window),
	}
}

// Hand returns the tracked hand identity.
func (h *JointHistory) Hand() tracking.Hand { return h.hand }

// Joint returns the tracked joint identifier.
func (h *JointHistory) Joint() tracking.Joint { return h.joint }

// Len returns the number of recorded samples.
func (h *JointHistory) Len() int {
	if h.full {
		return len(h.samples)
	}
	return h.pos
}

// Update queries the provider for the joint's current pose and records
// it with the provider's clock. If the hand or joint is unavailable
// the call is a no-op: the history is left unchanged, not cleared.
func (h *JointHistory) Update(p tracking.Provider) {
	pose, ok := p.JointPose(h.hand, h.joint)
	if !ok {
		return
	}
	h.record(TimestampedPose{Pose: pose, Time: p.Now()})
}

// record appends a sample, evicting the oldest when the window is full.
func (h *JointHistory) record(s TimestampedPose) {
	h.samples[h.pos] = s
	h.pos++
	if h.pos >= len(h.samples) {
		h.pos = 0
		h.full = true
	}
}

// Samples returns the recorded samples in insertion order, oldest first.
func (h *JointHistory) Samples() []TimestampedPose {
	n := h.Len()
	out := make([]TimestampedPose, n)
	if h.full {
		copy(out, h.samples[h.pos:])
		copy(out[len(h.samples)-h.pos:], h.samples[:h.pos])
	} else {
		copy(out, h.samples[:h.pos])
	}
	return out
}

// Latest returns the most recently recorded sample.
func (h *JointHistory) Latest() (TimestampedPose, bool) {
	if h.Len() == 0 {
		return TimestampedPose{}, false
	}
	idx := h.pos - 1
	if idx < 0 {
		idx = len(h.samples) - 1
	}
	return h.samples[idx], true
}

// AverageVelocity returns the mean of the per-step velocities across
// all consecutive sample pairs in the window, dividing each position
// delta by the actual elapsed time between the pair, so it tolerates
// variable tick rates. With fewer than two samples it returns the zero
// vector; that is an advisory condition, not a failure.
func (h *JointHistory) AverageVelocity() r3.Vec {
	samples := h.Samples()
	if len(samples) < 2 {
		log.Printf("joint history %s/%d: not enough samples for velocity (%d)", h.hand, h.joint, len(samples))
		return r3.Vec{}
	}

	var sum r3.Vec
	pairs := 0
	for i := 1; i < len(samples); i++ {
		dt := samples[i].Time - samples[i-1].Time
		if dt <= 0 {
			continue
		}
		step := r3.Sub(samples[i].Pose.Position, samples[i-1].Pose.Position)
		sum = r3.Add(sum, r3.Scale(1/dt, step))
		pairs++
	}
	if pairs == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/float64(pairs), sum)
}

// Distance returns the Euclidean distance between the most recent
// recorded positions of two joints. It fails with ErrNoSamples if
// either history is empty; callers must not invoke it before the
// joints have been updated at least once.
func Distance(a, b *JointHistory) (float64, error) {
	pa, ok := a.Latest()
	if !ok {
		return 0, ErrNoSamples
	}
	pb, ok := b.Latest()
	if !ok {
		return 0, ErrNoSamples
	}
	return r3.Norm(r3.Sub(pa.Pose.Position, pb.Pose.Position)), nil
}

// RelativeVelocity returns the average relative velocity vector
// between two joints, the mean over the windows of joint a's per-step
// velocity minus joint b's. Each history is averaged over its own
// timestamps, so the result stays meaningful even if one joint briefly
// missed an update and the buffers hold different sample counts.
// With insufficient samples on both sides it returns the zero vector.
func RelativeVelocity(a, b *JointHistory) r3.Vec {
	return r3.Sub(a.AverageVelocity(), b.AverageVelocity())
}
