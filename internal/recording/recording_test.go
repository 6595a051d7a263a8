package recording

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryRecordingBasics(t *testing.T) {
	rec := NewSineRecording([]string{"C3", "C4"}, 256, 10, 10)

	if got := rec.Duration(); got != 10.0 {
		t.Errorf("Expected duration 10, got %g", got)
	}
	if got := rec.NumSamples(); got != 2560 {
		t.Errorf("Expected 2560 samples, got %d", got)
	}
	if got := rec.Channels(); len(got) != 2 || got[0] != "C3" {
		t.Errorf("Unexpected channels: %v", got)
	}
}

func TestMemoryRecordingShapeMismatch(t *testing.T) {
	_, err := NewMemoryRecording("x", []string{"C3", "C4"}, 256, [][]float64{{1, 2}})
	if err == nil {
		t.Fatal("Expected error for channel/data mismatch")
	}

	_, err = NewMemoryRecording("x", []string{"C3", "C4"}, 256, [][]float64{{1, 2}, {1}})
	if err == nil {
		t.Fatal("Expected error for ragged rows")
	}
}

func TestDataExtraction(t *testing.T) {
	rec := NewSineRecording([]string{"C3", "C4"}, 100, 10, 5)

	data, err := rec.Data([]string{"C4"}, 2, 4)
	if err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	if len(data) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(data))
	}
	if len(data[0]) != 200 {
		t.Errorf("Expected 200 samples, got %d", len(data[0]))
	}

	if _, err := rec.Data([]string{"FP1"}, 0, 1); err == nil {
		t.Error("Expected error for unknown channel")
	}
	if _, err := rec.Data([]string{"C3"}, 5, 2); err == nil {
		t.Error("Expected error for inverted range")
	}
	if _, err := rec.Data([]string{"C3"}, 0, 100); err == nil {
		t.Error("Expected error for range past the end")
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"eeg Fp1":  "FP1",
		" C3 ":     "C3",
		"CHAN.O2":  "O2",
		"EEG_T7":   "T7",
		"Pz":       "PZ",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJSONLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rec.json")
	content := `{
		"label": "demo",
		"sample_rate": 128,
		"channels": ["C3", "C4"],
		"data": [[0.1, 0.2, 0.3, 0.4], [1.0, 1.1, 1.2, 1.3]]
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	rec, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rec.Label() != "demo" {
		t.Errorf("Expected label 'demo', got %q", rec.Label())
	}
	if rec.SampleRate() != 128 {
		t.Errorf("Expected sample rate 128, got %g", rec.SampleRate())
	}
	if rec.NumSamples() != 4 {
		t.Errorf("Expected 4 samples, got %d", rec.NumSamples())
	}
}

func TestJSONLoaderRejectsBadRate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rec.json")
	os.WriteFile(path, []byte(`{"sample_rate": 0, "channels": [], "data": []}`), 0644)

	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for non-positive sample rate")
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	if _, err := Load("recording.xyz"); err == nil {
		t.Fatal("Expected error for unsupported format")
	}
	if _, err := Load("recording"); err == nil {
		t.Fatal("Expected error for missing extension")
	}
}

func TestRegistryReplacement(t *testing.T) {
	exts := SupportedExtensions()
	found := false
	for _, e := range exts {
		if e == "json" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected json in supported extensions, got %v", exts)
	}
}
