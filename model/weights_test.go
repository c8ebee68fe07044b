package model

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeWeightsFile(t *testing.T, values []float64) string {
	t.Helper()

	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}

	path := filepath.Join(t.TempDir(), "weights.bin")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write weights: %v", err)
	}
	return path
}

func TestLoadWeights(t *testing.T) {
	values := []float64{0.0, 1.5, -2.25, math.Pi, -0.0001}
	path := writeWeightsFile(t, values)

	got, err := LoadWeights(path, len(values))
	if err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}
	if len(got) != len(values) {
		t.Fatalf("got %d values, want %d", len(got), len(values))
	}
	for i := range values {
		if got[i] != values[i] {
			t.Errorf("value %d = %v, want %v", i, got[i], values[i])
		}
	}
}

func TestLoadWeightsCountMismatch(t *testing.T) {
	path := writeWeightsFile(t, []float64{1, 2, 3})

	if _, err := LoadWeights(path, 4); err == nil {
		t.Error("expected error for value count mismatch")
	}
}

func TestLoadWeightsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.bin")
	if err := os.WriteFile(path, []byte{1, 2, 3, 4, 5}, 0o644); err != nil {
		t.Fatalf("write weights: %v", err)
	}

	if _, err := LoadWeights(path, 1); err == nil {
		t.Error("expected error for file not a multiple of 8 bytes")
	}
}

func TestLoadWeightsMissingFile(t *testing.T) {
	if _, err := LoadWeights(filepath.Join(t.TempDir(), "absent.bin"), 10); err == nil {
		t.Error("expected error for missing file")
	}
}
