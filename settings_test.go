package treebloom

import (
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.CenterText != DefaultCenterText || !s.CameraEnabled || s.MusicVolume != 0.7 {
		t.Errorf("defaults = %+v", s)
	}
	if s.ParticleCount != 5000 || s.OrnamentCount != 150 {
		t.Errorf("counts = %d/%d, want 5000/150", s.ParticleCount, s.OrnamentCount)
	}
}

func TestSettingsApplyEnv(t *testing.T) {
	t.Setenv("TREEBLOOM_CENTER_TEXT", "Hello")
	t.Setenv("TREEBLOOM_CAMERA_ENABLED", "false")
	t.Setenv("TREEBLOOM_MUSIC_VOLUME", "3")
	t.Setenv("TREEBLOOM_PERCEPTION_INTERVAL", "250ms")
	t.Setenv("TREEBLOOM_SEED", "9")

	s := DefaultSettings()
	if err := s.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if s.CenterText != "Hello" || s.CameraEnabled {
		t.Errorf("text/camera = %q/%v", s.CenterText, s.CameraEnabled)
	}
	if s.MusicVolume != 1 {
		t.Errorf("volume = %f, want clamped 1", s.MusicVolume)
	}
	if s.PerceptionInterval != 250*time.Millisecond || s.Seed != 9 {
		t.Errorf("interval/seed = %v/%d", s.PerceptionInterval, s.Seed)
	}
	// Untouched fields keep their values.
	if s.ParticleCount != 5000 {
		t.Errorf("ParticleCount = %d, want 5000", s.ParticleCount)
	}
}

func TestSettingsApplyEnvBadValue(t *testing.T) {
	t.Setenv("TREEBLOOM_PARTICLE_COUNT", "lots")
	s := DefaultSettings()
	if err := s.ApplyEnv(); err == nil {
		t.Error("expected error for non-numeric count")
	}
}

func TestSettingsNormalize(t *testing.T) {
	s := Settings{MusicVolume: -1}
	s.normalize()
	def := DefaultSettings()
	if s.MusicVolume != 0 || s.ParticleCount != def.ParticleCount || s.MusicURI != def.MusicURI {
		t.Errorf("normalized = %+v", s)
	}
	if s.PerceptionInterval != def.PerceptionInterval {
		t.Errorf("interval = %v", s.PerceptionInterval)
	}
}

func TestSettingsStoreMemoryOnly(t *testing.T) {
	store := NewSettingsStore(nil)
	s := store.Settings()
	s.CenterText = "Merry"
	s.ParticleCount = -5
	store.Update(s)
	if err := store.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got := store.Settings()
	if got.CenterText != "Merry" || got.ParticleCount != 5000 {
		t.Errorf("settings = %+v", got)
	}
	if err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.Settings().CenterText != DefaultCenterText {
		t.Error("memory-only Load did not reset to defaults")
	}
}

func TestSettingsStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)

	store := OpenSettingsStore("treebloom_test")
	if store.manager == nil {
		t.Skip("gdata storage unavailable")
	}
	s := store.Settings()
	s.CenterText = "Round trip"
	s.Seed = 77
	s.PerceptionInterval = 2 * time.Second
	store.Update(s)
	if err := store.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened := OpenSettingsStore("treebloom_test")
	got := reopened.Settings()
	if got.CenterText != "Round trip" || got.Seed != 77 || got.PerceptionInterval != 2*time.Second {
		t.Errorf("reloaded = %+v", got)
	}
}

func TestSceneConfigFromSettings(t *testing.T) {
	s := DefaultSettings()
	s.ParticleCount = 123
	s.OrnamentCount = 7
	s.CenterText = "x"
	s.Seed = 5
	cfg := SceneConfigFromSettings(s)
	if cfg.Particles.Count != 123 || cfg.Ornaments.Count != 7 || cfg.CenterText != "x" || cfg.Seed != 5 {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Photos) != 14 {
		t.Errorf("photos = %d, want 14", len(cfg.Photos))
	}
}
