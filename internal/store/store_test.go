package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

// newTestStore creates an in-memory store for testing.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testProfile(name string) *Profile {
	return &Profile{
		ID:                uuid.NewString(),
		Name:              name,
		TrackedHand:       "Right",
		ReadyDistance:     0.03,
		Velocity:          0.05,
		CompletedDistance: 0.03,
	}
}

func TestProfileRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)

	p := testProfile("default")
	if err := s.Profiles().Create(p); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	got, err := s.Profiles().GetByID(p.ID)
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}
	if got.Name != "default" {
		t.Errorf("expected name %q, got %q", "default", got.Name)
	}
	if got.TrackedHand != "Right" {
		t.Errorf("expected tracked hand Right, got %q", got.TrackedHand)
	}
	if got.ReadyDistance != 0.03 || got.Velocity != 0.05 || got.CompletedDistance != 0.03 {
		t.Errorf("thresholds not persisted: %+v", got)
	}

	byName, err := s.Profiles().GetByName("default")
	if err != nil {
		t.Fatalf("failed to get profile by name: %v", err)
	}
	if byName.ID != p.ID {
		t.Errorf("expected ID %q, got %q", p.ID, byName.ID)
	}
}

func TestProfileRepository_GetMissing(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Profiles().GetByID("does-not-exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProfileRepository_DuplicateNameRejected(t *testing.T) {
	s := newTestStore(t)

	if err := s.Profiles().Create(testProfile("dupe")); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	if err := s.Profiles().Create(testProfile("dupe")); err == nil {
		t.Error("expected error creating profile with duplicate name")
	}
}

func TestProfileRepository_InvalidHandRejected(t *testing.T) {
	s := newTestStore(t)

	p := testProfile("bad-hand")
	p.TrackedHand = "Both"
	if err := s.Profiles().Create(p); err == nil {
		t.Error("expected error creating profile with invalid hand")
	}
}

func TestProfileRepository_List(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"slow", "fast", "tight"} {
		if err := s.Profiles().Create(testProfile(name)); err != nil {
			t.Fatalf("failed to create profile %q: %v", name, err)
		}
	}

	profiles, err := s.Profiles().List()
	if err != nil {
		t.Fatalf("failed to list profiles: %v", err)
	}
	if len(profiles) != 3 {
		t.Errorf("expected 3 profiles, got %d", len(profiles))
	}
}

func TestProfileRepository_UpdateAndDelete(t *testing.T) {
	s := newTestStore(t)

	p := testProfile("tune-me")
	if err := s.Profiles().Create(p); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	p.Velocity = 0.08
	p.Name = "tuned"
	if err := s.Profiles().Update(p); err != nil {
		t.Fatalf("failed to update profile: %v", err)
	}

	got, err := s.Profiles().GetByID(p.ID)
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}
	if got.Velocity != 0.08 || got.Name != "tuned" {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := s.Profiles().Delete(p.ID); err != nil {
		t.Fatalf("failed to delete profile: %v", err)
	}
	if _, err := s.Profiles().GetByID(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := s.Profiles().Delete(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetSetting(SettingActiveProfile); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unset key, got %v", err)
	}

	if err := s.SetSetting(SettingActiveProfile, "abc"); err != nil {
		t.Fatalf("failed to set setting: %v", err)
	}
	if err := s.SetSetting(SettingActiveProfile, "def"); err != nil {
		t.Fatalf("failed to overwrite setting: %v", err)
	}

	v, err := s.GetSetting(SettingActiveProfile)
	if err != nil {
		t.Fatalf("failed to get setting: %v", err)
	}
	if v != "def" {
		t.Errorf("expected value %q, got %q", "def", v)
	}
}
