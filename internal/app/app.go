// Package app provides the main application logic for the chutki snap detection service.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/chutki/internal/gesture"
	"github.com/ayusman/chutki/internal/store"
	"github.com/ayusman/chutki/internal/tracking"
)

const (
	// DefaultTickRateHz is the detector update rate when none is configured.
	DefaultTickRateHz = 30
	// EventLogSize is the maximum number of snap events kept in memory.
	// The log is in-session only; it is not persisted.
	EventLogSize = 100
)

// Config holds configuration options for the application.
type Config struct {
	Provider   tracking.Provider
	Store      *store.Store
	Detector   gesture.Config
	TickRateHz int
}

// NotificationType distinguishes fan-out notifications.
type NotificationType string

const (
	// NotifyState is sent when the detector changes state.
	NotifyState NotificationType = "state"
	// NotifySnap is sent when a snap gesture completes.
	NotifySnap NotificationType = "snap"
)

// Notification is delivered to subscribers on detector activity.
type Notification struct {
	Type NotificationType `json:"type"`
	Prev gesture.State    `json:"prev,omitempty"`
	Next gesture.State    `json:"next,omitempty"`
	Snap *gesture.Event   `json:"snap,omitempty"`
}

// App owns the tracking provider and snap detector and drives the
// detector at a fixed tick rate from a single goroutine.
type App struct {
	config Config

	mu        sync.RWMutex
	detector  *gesture.Detector
	enabled   bool
	stopCh    chan struct{}
	snapCount int
	events    []gesture.Event

	sinkMu sync.RWMutex
	sinks  []func(Notification)
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.TickRateHz <= 0 {
		config.TickRateHz = DefaultTickRateHz
	}

	a := &App{config: config}
	a.detector = a.newDetector()
	return a
}

// newDetector builds a detector wired to the app's fan-out. A fresh
// detector starts with empty histories, which is also how histories
// are cleared on re-enable.
func (a *App) newDetector() *gesture.Detector {
	d := gesture.NewDetector(a.config.Provider, a.config.Detector)
	d.OnStateChange = func(prev, next gesture.State) {
		a.dispatch(Notification{Type: NotifyState, Prev: prev, Next: next})
	}
	d.OnSnapCompleted = func(e gesture.Event) {
		a.snapCount++
		a.events = append(a.events, e)
		if len(a.events) > EventLogSize {
			a.events = a.events[len(a.events)-EventLogSize:]
		}
		log.Printf("snap completed on %s hand (total %d)", e.Hand, a.snapCount)
		a.dispatch(Notification{Type: NotifySnap, Snap: &e})
	}
	return d
}

// SetEnabled enables or disables snap detection. Disabling destroys
// the joint histories; re-enabling starts from a fresh, uninitialized
// detector.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.enabled == enabled {
		return
	}
	a.enabled = enabled
	if enabled {
		a.detector = a.newDetector()
	}
}

// IsEnabled returns whether snap detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// State returns the detector's current state.
func (a *App) State() gesture.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector.State()
}

// SnapCount returns the number of snaps detected this session.
func (a *App) SnapCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapCount
}

// RecentEvents returns the in-session snap event log, oldest first.
func (a *App) RecentEvents() []gesture.Event {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]gesture.Event, len(a.events))
	copy(out, a.events)
	return out
}

// Tuning returns the detector's current configuration.
func (a *App) Tuning() gesture.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector.Config()
}

// ApplyTuning replaces the detector's thresholds at a tick boundary.
// The thresholds also carry over to the fresh detectors built on
// re-enable, so tuning applied while detection is disabled still takes
// effect.
func (a *App) ApplyTuning(cfg gesture.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector.ApplyTuning(cfg)
	a.config.Detector.ReadyDistance = cfg.ReadyDistance
	a.config.Detector.Velocity = cfg.Velocity
	a.config.Detector.CompletedDistance = cfg.CompletedDistance
	log.Printf("detector tuning applied: ready=%.3f velocity=%.3f completed=%.3f",
		cfg.ReadyDistance, cfg.Velocity, cfg.CompletedDistance)
}

// Subscribe registers a sink invoked synchronously for every
// notification. Sinks must not block.
func (a *App) Subscribe(fn func(Notification)) {
	a.sinkMu.Lock()
	defer a.sinkMu.Unlock()
	a.sinks = append(a.sinks, fn)
}

// dispatch fans a notification out to all sinks.
func (a *App) dispatch(n Notification) {
	a.sinkMu.RLock()
	defer a.sinkMu.RUnlock()
	for _, fn := range a.sinks {
		fn(n)
	}
}

// Start begins the detection tick loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	a.stopCh = make(chan struct{})
	go a.run(a.stopCh)

	log.Printf("detection loop started at %d Hz", a.config.TickRateHz)
	return nil
}

// Stop halts the detection loop.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	log.Println("detection loop stopped")
}

// run is the external driver: it invokes the detector's per-tick
// update once per interval until stopped. The detector itself has no
// internal scheduling.
func (a *App) run(stopCh chan struct{}) {
	interval := time.Second / time.Duration(a.config.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			a.mu.Lock()
			if a.enabled {
				a.detector.Tick()
			}
			a.mu.Unlock()
		}
	}
}

// Tick runs a single detector update if detection is enabled. It is
// the loop body of run, exposed for callers that drive ticks manually.
func (a *App) Tick() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enabled {
		a.detector.Tick()
	}
}
