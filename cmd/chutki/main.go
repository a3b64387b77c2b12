package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ayusman/chutki/internal/app"
	"github.com/ayusman/chutki/internal/config"
	"github.com/ayusman/chutki/internal/server"
	"github.com/ayusman/chutki/internal/store"
	"github.com/ayusman/chutki/internal/tracking"
)

func main() {
	fmt.Println("Chutki - Snap Gesture Detection")

	configPath := flag.String("config", defaultConfigPath(), "path to TOML config file")
	flag.Parse()

	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize the store
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
	}
	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Pick the tracking backend
	provider, cleanup, err := newProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to set up tracking provider: %v", err)
	}
	defer cleanup()

	a := app.New(app.Config{
		Provider:   provider,
		Store:      st,
		Detector:   cfg.GestureConfig(),
		TickRateHz: cfg.TickRateHz,
	})

	// Restore the last applied tuning profile, if any
	if id, err := st.GetSetting(store.SettingActiveProfile); err == nil {
		if p, err := st.Profiles().GetByID(id); err == nil {
			tuning := a.Tuning()
			tuning.ReadyDistance = p.ReadyDistance
			tuning.Velocity = p.Velocity
			tuning.CompletedDistance = p.CompletedDistance
			a.ApplyTuning(tuning)
			log.Printf("Restored tuning profile %q", p.Name)
		} else if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Failed to restore tuning profile: %v", err)
		}
	}

	// Reload detector thresholds when the config file changes
	loader.OnChange(func(c *config.Config) {
		a.ApplyTuning(c.GestureConfig())
	})
	if err := loader.Watch(); err != nil {
		log.Printf("Config watching disabled: %v", err)
	}
	defer loader.Close()

	a.SetEnabled(true)
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start detection loop: %v", err)
	}
	defer a.Stop()

	// Find web directory for the status UI
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       a,
	})

	fmt.Printf("Starting server on %s\n", cfg.ListenAddr)
	if err := srv.ListenAndServe(cfg.ListenAddr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// newProvider selects the tracking backend: a replay recording when
// one is configured, otherwise a null provider that reports the hand
// absent so the detector simply stays uninitialized.
func newProvider(cfg *config.Config) (tracking.Provider, func(), error) {
	if cfg.ReplayFile == "" {
		log.Println("No tracking backend configured, hand will be absent")
		return tracking.NewNullProvider(), func() {}, nil
	}

	rp, err := tracking.NewReplayProvider(cfg.ReplayFile, cfg.ReplayLoop)
	if err != nil {
		return nil, nil, err
	}
	rp.Open()
	log.Printf("Replaying poses from %s (loop=%v)", cfg.ReplayFile, cfg.ReplayLoop)
	return rp, rp.Close, nil
}

// defaultConfigPath returns ~/.chutki/chutki.toml, or a local path if
// the home directory is unavailable.
func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "chutki.toml"
	}
	return filepath.Join(homeDir, ".chutki", "chutki.toml")
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.chutki/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".chutki", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
