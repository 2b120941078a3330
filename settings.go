package treebloom

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// DefaultCenterText is the greeting shown on the card until edited.
const DefaultCenterText = "To Ms.Si—愿光与雪都落在你心上"

// Settings is the persisted configuration of a greeting card. Counts and the
// seed are read once when a Scene is built; changing them later has no
// effect on a running Scene.
type Settings struct {
	CenterText    string  `yaml:"centerText" env:"CENTER_TEXT"`
	CameraEnabled bool    `yaml:"cameraEnabled" env:"CAMERA_ENABLED"`
	MusicURI      string  `yaml:"musicURI" env:"MUSIC_URI"`
	MusicVolume   float64 `yaml:"musicVolume" env:"MUSIC_VOLUME"`

	ParticleCount int    `yaml:"particleCount" env:"PARTICLE_COUNT"`
	OrnamentCount int    `yaml:"ornamentCount" env:"ORNAMENT_COUNT"`
	Seed          uint64 `yaml:"seed" env:"SEED"`

	PerceptionInterval time.Duration `yaml:"perceptionInterval" env:"PERCEPTION_INTERVAL"`
	RecognizerURL      string        `yaml:"recognizerURL" env:"RECOGNIZER_URL"`
	CameraURL          string        `yaml:"cameraURL" env:"CAMERA_URL"`
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	return Settings{
		CenterText:         DefaultCenterText,
		CameraEnabled:      true,
		MusicURI:           DefaultMusicURI,
		MusicVolume:        0.7,
		ParticleCount:      DefaultParticleConfig().Count,
		OrnamentCount:      DefaultOrnamentConfig().Count,
		PerceptionInterval: DefaultPerceptionInterval,
	}
}

// normalize replaces out-of-range values with their defaults.
func (s *Settings) normalize() {
	def := DefaultSettings()
	if s.MusicURI == "" {
		s.MusicURI = def.MusicURI
	}
	s.MusicVolume = clamp01(s.MusicVolume)
	if s.ParticleCount <= 0 {
		s.ParticleCount = def.ParticleCount
	}
	if s.OrnamentCount <= 0 {
		s.OrnamentCount = def.OrnamentCount
	}
	if s.PerceptionInterval <= 0 {
		s.PerceptionInterval = def.PerceptionInterval
	}
}

// ApplyEnv overrides fields from TREEBLOOM_* environment variables. Unset
// variables leave the field untouched.
func (s *Settings) ApplyEnv() error {
	if err := env.ParseWithOptions(s, env.Options{Prefix: "TREEBLOOM_"}); err != nil {
		return fmt.Errorf("treebloom: parse env: %w", err)
	}
	s.normalize()
	return nil
}

const (
	settingsObject   = "settings"
	settingsProperty = "card"
)

// SettingsStore loads and saves Settings through gdata. A nil manager runs
// in memory only: Load yields defaults and Save is a no-op.
type SettingsStore struct {
	manager  *gdata.Manager
	settings Settings
}

// NewSettingsStore creates a store and loads any saved settings. A load
// failure is logged and leaves the defaults in place.
func NewSettingsStore(manager *gdata.Manager) *SettingsStore {
	s := &SettingsStore{manager: manager, settings: DefaultSettings()}
	if err := s.Load(); err != nil {
		log.Printf("treebloom: failed to load settings: %v (using defaults)", err)
	}
	return s
}

// OpenSettingsStore opens the gdata storage for appName. If storage cannot
// be opened the store falls back to memory-only mode.
func OpenSettingsStore(appName string) *SettingsStore {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("treebloom: settings storage unavailable: %v", err)
		m = nil
	}
	return NewSettingsStore(m)
}

// Load reads the saved settings. Missing data is not an error.
func (s *SettingsStore) Load() error {
	s.settings = DefaultSettings()
	if s.manager == nil {
		return nil
	}
	if !s.manager.ObjectPropExists(settingsObject, settingsProperty) {
		return nil
	}

	data, err := s.manager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		return fmt.Errorf("treebloom: load settings: %w", err)
	}
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("treebloom: unmarshal settings: %w", err)
	}
	loaded.normalize()
	s.settings = loaded
	return nil
}

// Save writes the current settings.
func (s *SettingsStore) Save() error {
	if s.manager == nil {
		return nil
	}
	data, err := yaml.Marshal(s.settings)
	if err != nil {
		return fmt.Errorf("treebloom: marshal settings: %w", err)
	}
	if err := s.manager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("treebloom: save settings: %w", err)
	}
	return nil
}

// Settings returns a copy of the current settings.
func (s *SettingsStore) Settings() Settings {
	return s.settings
}

// Update replaces the current settings. Call Save to persist them.
func (s *SettingsStore) Update(settings Settings) {
	settings.normalize()
	s.settings = settings
}
