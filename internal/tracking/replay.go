package tracking

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// replayFrame is one line of a pose recording.
type replayFrame struct {
	Time    float64                `json:"t"`
	Hand    string                 `json:"hand"`
	Present bool                   `json:"present"`
	Joints  map[string]replayJoint `json:"joints"`
}

type replayJoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ReplayProvider plays back a JSON-lines pose recording in real time.
// Each line holds one frame: a timestamp, a hand, a presence flag, and
// a map of joint index to position. Frames are served according to
// their recorded timestamps against a wall clock started at Open;
// queries between frames see the most recent frame at or before the
// query time. When the recording runs out the provider either loops
// or reports the hand as lost.
type ReplayProvider struct {
	frames []replayFrame
	loop   bool

	mu      sync.Mutex
	started time.Time
	running bool
}

// NewReplayProvider loads a pose recording from the given path.
func NewReplayProvider(path string, loop bool) (*ReplayProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	var frames []replayFrame
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var fr replayFrame
		if err := json.Unmarshal(raw, &fr); err != nil {
			return nil, fmt.Errorf("recording line %d: %w", line, err)
		}
		frames = append(frames, fr)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("recording %s contains no frames", path)
	}

	return &ReplayProvider{frames: frames, loop: loop}, nil
}

// Open starts playback from the beginning of the recording.
func (p *ReplayProvider) Open() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = time.Now()
	p.running = true
}

// Close stops playback; subsequent queries report the hand as lost.
func (p *ReplayProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
}

// current returns the frame at or before the current playback time.
func (p *ReplayProvider) current() (replayFrame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return replayFrame{}, false
	}

	elapsed := time.Since(p.started).Seconds()
	base := p.frames[0].Time
	span := p.frames[len(p.frames)-1].Time - base

	if p.loop && span > 0 {
		for elapsed > span {
			elapsed -= span
		}
	}

	t := base + elapsed
	idx := -1
	for i := range p.frames {
		if p.frames[i].Time <= t {
			idx = i
		} else {
			break
		}
	}
	if idx < 0 {
		return replayFrame{}, false
	}
	if !p.loop && t > p.frames[len(p.frames)-1].Time {
		// Recording exhausted; the hand is gone.
		return replayFrame{}, false
	}
	return p.frames[idx], true
}

// JointPose returns the recorded pose for the joint in the current frame.
func (p *ReplayProvider) JointPose(hand Hand, joint Joint) (Pose, bool) {
	fr, ok := p.current()
	if !ok || !fr.Present || Hand(fr.Hand) != hand {
		return Pose{}, false
	}
	j, ok := fr.Joints[fmt.Sprintf("%d", int(joint))]
	if !ok {
		return Pose{}, false
	}
	return Pose{
		Position:    r3.Vec{X: j.X, Y: j.Y, Z: j.Z},
		Orientation: IdentityOrientation(),
	}, true
}

// HandPresent reports whether the current frame tracks the hand.
func (p *ReplayProvider) HandPresent(hand Hand) bool {
	fr, ok := p.current()
	return ok && fr.Present && Hand(fr.Hand) == hand
}

// Now returns seconds since playback started.
func (p *ReplayProvider) Now() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return 0
	}
	return time.Since(p.started).Seconds()
}
