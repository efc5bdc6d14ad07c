// SPDX-License-Identifier: MIT
package engine

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Export writes the input, reconstructed and expected signals of the last
// Run as mono WAV files in dir and returns their paths.
func (s *Session) Export(dir string) ([]string, error) {
	input, back, expected, err := s.Buffers()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	outputs := []struct {
		name string
		data []float64
	}{
		{TitleInput, input},
		{TitleBack, back},
		{TitleExpected, expected},
	}

	paths := make([]string, 0, len(outputs))
	for _, out := range outputs {
		path := filepath.Join(dir, out.name+".wav")
		if err := writeWAV(path, out.data, s.cfg.Signal.SampleRate, s.cfg.Export.BitDepth); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeWAV(path string, samples []float64, sampleRate, bitDepth int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(file, sampleRate, bitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           quantize(samples, bitDepth),
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		file.Close()
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return file.Close()
}

// quantize maps [-1, 1] to signed integers of bitDepth bits, clipping
// values outside that range.
func quantize(samples []float64, bitDepth int) []int {
	full := float64(int64(1)<<(bitDepth-1) - 1)
	data := make([]int, len(samples))
	for i, v := range samples {
		v = math.Max(-1, math.Min(1, v))
		data[i] = int(math.Round(v * full))
	}
	return data
}
