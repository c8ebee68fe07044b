package model

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// LoadWeights reads a raw little-endian float64 weight blob and
// checks it against the expected value count.
func LoadWeights(path string, expected int) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights: %w", err)
	}

	if len(data)%8 != 0 {
		return nil, fmt.Errorf("weights file %s is %d bytes, not a multiple of 8", path, len(data))
	}

	count := len(data) / 8
	if count != expected {
		return nil, fmt.Errorf("weights file %s has %d values, topology expects %d", path, count, expected)
	}

	weights := make([]float64, count)
	for i := range weights {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		weights[i] = math.Float64frombits(bits)
	}

	return weights, nil
}
