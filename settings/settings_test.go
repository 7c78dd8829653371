package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := LoadFile(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if s != Default() {
		t.Errorf("got %+v, want defaults %+v", s, Default())
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	want := Settings{
		Tempo:               72,
		BeatsPerMeasure:     3,
		AccentFirstBeat:     false,
		Volume:              0.4,
		HapticsEnabled:      false,
		HapticsDownbeatOnly: true,
	}
	if err := want.SaveFile(path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLoadClampsOutOfRangeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"tempo": 500, "beats_per_measure": 0, "volume": 2.5}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Tempo != MaxTempo {
		t.Errorf("tempo = %d, want %d", s.Tempo, MaxTempo)
	}
	if s.BeatsPerMeasure != 1 {
		t.Errorf("beats_per_measure = %d, want 1", s.BeatsPerMeasure)
	}
	if s.Volume != 1 {
		t.Errorf("volume = %v, want 1", s.Volume)
	}
}

func TestLoadClampsLowTempo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"tempo": 5}`), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Tempo != MinTempo {
		t.Errorf("tempo = %d, want %d", s.Tempo, MinTempo)
	}
}

func TestLoadCorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadFile(path)
	if err == nil {
		t.Error("expected error for corrupt config")
	}
	if s != Default() {
		t.Errorf("corrupt config did not fall back to defaults: %+v", s)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.json")
	if err := Default().SaveFile(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config not written: %v", err)
	}
}
