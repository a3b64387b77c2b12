package tracking

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// ScriptedProvider is a test implementation of the Provider interface.
// It allows tests to control joint poses, hand presence, and the clock.
type ScriptedProvider struct {
	mu      sync.Mutex
	poses   map[Hand]map[Joint]Pose
	present map[Hand]bool
	now     float64
}

// NewScriptedProvider creates a ScriptedProvider with no hands present
// and the clock at zero.
func NewScriptedProvider() *ScriptedProvider {
	return &ScriptedProvider{
		poses:   make(map[Hand]map[Joint]Pose),
		present: make(map[Hand]bool),
	}
}

// SetPresent sets whether the given hand is tracked.
func (p *ScriptedProvider) SetPresent(hand Hand, present bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.present[hand] = present
}

// SetJoint sets the position of a joint with identity orientation.
func (p *ScriptedProvider) SetJoint(hand Hand, joint Joint, pos r3.Vec) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.poses[hand] == nil {
		p.poses[hand] = make(map[Joint]Pose)
	}
	p.poses[hand][joint] = Pose{Position: pos, Orientation: IdentityOrientation()}
}

// ClearJoint makes a single joint unavailable while leaving the hand present.
func (p *ScriptedProvider) ClearJoint(hand Hand, joint Joint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.poses[hand] != nil {
		delete(p.poses[hand], joint)
	}
}

// Advance moves the clock forward by dt seconds.
func (p *ScriptedProvider) Advance(dt float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now += dt
}

// JointPose returns the scripted pose for the joint, if any.
func (p *ScriptedProvider) JointPose(hand Hand, joint Joint) (Pose, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.present[hand] {
		return Pose{}, false
	}
	pose, ok := p.poses[hand][joint]
	return pose, ok
}

// HandPresent reports the scripted presence of the hand.
func (p *ScriptedProvider) HandPresent(hand Hand) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.present[hand]
}

// Now returns the scripted clock.
func (p *ScriptedProvider) Now() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now
}
