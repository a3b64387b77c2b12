// Package tracking defines the hand-joint pose types and the provider
// interface that abstracts the underlying hand-tracking backend.
package tracking

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Hand identifies a tracked hand.
type Hand string

const (
	// LeftHand identifies the left hand.
	LeftHand Hand = "Left"
	// RightHand identifies the right hand.
	RightHand Hand = "Right"
)

// Joint identifies an anatomical landmark on a tracked hand,
// following the MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
type Joint int

const (
	Wrist      Joint = 0
	ThumbCMC   Joint = 1
	ThumbMCP   Joint = 2
	ThumbIP    Joint = 3
	ThumbTip   Joint = 4
	IndexMCP   Joint = 5
	IndexPIP   Joint = 6
	IndexDIP   Joint = 7
	IndexTip   Joint = 8
	MiddleMCP  Joint = 9
	MiddlePIP  Joint = 10
	MiddleDIP  Joint = 11
	MiddleTip  Joint = 12
	RingMCP    Joint = 13
	RingPIP    Joint = 14
	RingDIP    Joint = 15
	RingTip    Joint = 16
	PinkyMCP   Joint = 17
	PinkyPIP   Joint = 18
	PinkyDIP   Joint = 19
	PinkyTip   Joint = 20
	NumJoints        = 21
)

// Pose is the position and orientation of a joint at one instant.
// Positions are in meters in the tracker's reference frame.
type Pose struct {
	Position    r3.Vec
	Orientation quat.Number
}

// IdentityOrientation returns the identity rotation.
func IdentityOrientation() quat.Number {
	return quat.Number{Real: 1}
}

// Provider defines the interface a hand-tracking backend implements.
// Implementations return a fresh, possibly-stale snapshot on every
// call; absence of a hand or joint is a normal recurring condition,
// not an error.
type Provider interface {
	// JointPose returns the current pose of the given joint on the
	// given hand, or false if the hand or joint is not tracked.
	JointPose(hand Hand, joint Joint) (Pose, bool)

	// HandPresent reports whether the given hand is currently tracked.
	HandPresent(hand Hand) bool

	// Now returns the backend's monotonic clock in seconds.
	Now() float64
}
