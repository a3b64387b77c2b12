package tracking

import "time"

// NullProvider is a Provider with no tracking backend attached. It
// reports every hand as absent, so a detector driven by it simply
// stays uninitialized.
type NullProvider struct {
	start time.Time
}

// NewNullProvider creates a NullProvider.
func NewNullProvider() *NullProvider {
	return &NullProvider{start: time.Now()}
}

// JointPose always reports the joint as unavailable.
func (p *NullProvider) JointPose(hand Hand, joint Joint) (Pose, bool) {
	return Pose{}, false
}

// HandPresent always reports the hand as absent.
func (p *NullProvider) HandPresent(hand Hand) bool {
	return false
}

// Now returns seconds since the provider was created.
func (p *NullProvider) Now() float64 {
	return time.Since(p.start).Seconds()
}
