// Package settings handles persisted metronome preferences. The clamping
// here is deliberately looser than the engine's strict tempo rejection:
// values read from disk are coerced into a usable range rather than
// refused, so a hand-edited or stale config file never prevents startup.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName  = "pulse"
	fileName = "config.json"

	MinTempo = 30
	MaxTempo = 150

	minBeatsPerMeasure = 1
	maxBeatsPerMeasure = 12
)

type Settings struct {
	Tempo               int     `json:"tempo"`
	BeatsPerMeasure     int     `json:"beats_per_measure"`
	AccentFirstBeat     bool    `json:"accent_first_beat"`
	Volume              float64 `json:"volume"`
	HapticsEnabled      bool    `json:"haptics_enabled"`
	HapticsDownbeatOnly bool    `json:"haptics_downbeat_only"`
}

func Default() Settings {
	return Settings{
		Tempo:           100,
		BeatsPerMeasure: 4,
		AccentFirstBeat: true,
		Volume:          0.8,
		HapticsEnabled:  true,
	}
}

// Clamp coerces all fields into their valid ranges.
func (s *Settings) Clamp() {
	if s.Tempo < MinTempo {
		s.Tempo = MinTempo
	} else if s.Tempo > MaxTempo {
		s.Tempo = MaxTempo
	}
	if s.BeatsPerMeasure < minBeatsPerMeasure {
		s.BeatsPerMeasure = minBeatsPerMeasure
	} else if s.BeatsPerMeasure > maxBeatsPerMeasure {
		s.BeatsPerMeasure = maxBeatsPerMeasure
	}
	if s.Volume < 0 {
		s.Volume = 0
	} else if s.Volume > 1 {
		s.Volume = 1
	}
}

func configPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(base, appName, fileName), nil
}

// Load reads settings from the config file, returning defaults if the file
// doesn't exist. Loaded values are clamped.
func Load() (Settings, error) {
	path, err := configPath()
	if err != nil {
		return Default(), err
	}
	return LoadFile(path)
}

func LoadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("read config: %w", err)
	}

	s := Default()
	if err := json.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("unmarshal config: %w", err)
	}
	s.Clamp()
	return s, nil
}

// Save persists the settings to disk, writing atomically via rename.
func (s Settings) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return s.SaveFile(path)
}

func (s Settings) SaveFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
