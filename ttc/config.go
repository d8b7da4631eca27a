// ttc-recorder - estimate time-to-contact from forward camera video
//  Copyright (C) 2021, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package ttc

import (
	"errors"
	"fmt"
	"math"
)

// DefaultFrameRate is the assumed pipeline cycle rate in Hz. Estimates
// are scaled by it, so it must match the rate frames are actually
// processed at.
const DefaultFrameRate = 30

// Mode selects how correspondences between frames are built.
type Mode int

const (
	Sparse Mode = iota
	Dense
)

func (m Mode) String() string {
	switch m {
	case Sparse:
		return "sparse"
	case Dense:
		return "dense"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "sparse":
		return Sparse, nil
	case "dense", "":
		return Dense, nil
	}
	return 0, fmt.Errorf("unknown flow mode %q", s)
}

// SparseFlowConfig holds the pyramidal Lucas-Kanade parameters.
type SparseFlowConfig struct {
	WindowSize      int     `yaml:"window-size"`
	MaxLevel        int     `yaml:"max-level"`
	MaxIterations   int     `yaml:"max-iterations"`
	Epsilon         float64 `yaml:"epsilon"`
	MinEigThreshold float64 `yaml:"min-eig-threshold"`
}

// DenseFlowConfig holds the Farneback parameters.
type DenseFlowConfig struct {
	PyramidScale float64 `yaml:"pyramid-scale"`
	Levels       int     `yaml:"levels"`
	WindowSize   int     `yaml:"window-size"`
	Iterations   int     `yaml:"iterations"`
	PolyN        int     `yaml:"poly-n"`
	PolySigma    float64 `yaml:"poly-sigma"`
}

type Config struct {
	Width      int
	Height     int
	FrameRate  float64
	Mode       Mode
	CannyLow   float64
	CannyHigh  float64
	SparseFlow SparseFlowConfig
	DenseFlow  DenseFlowConfig
}

func DefaultSparseFlowConfig() SparseFlowConfig {
	return SparseFlowConfig{
		WindowSize:      10,
		MaxLevel:        1,
		MaxIterations:   10,
		Epsilon:         0.01,
		MinEigThreshold: 0.0001,
	}
}

func DefaultDenseFlowConfig() DenseFlowConfig {
	return DenseFlowConfig{
		PyramidScale: 0.5,
		Levels:       3,
		WindowSize:   15,
		Iterations:   3,
		PolyN:        5,
		PolySigma:    1.1,
	}
}

// DefaultConfig returns the configuration for a width x height camera.
func DefaultConfig(width, height int) Config {
	return Config{
		Width:      width,
		Height:     height,
		FrameRate:  DefaultFrameRate,
		Mode:       Dense,
		CannyLow:   100,
		CannyHigh:  200,
		SparseFlow: DefaultSparseFlowConfig(),
		DenseFlow:  DefaultDenseFlowConfig(),
	}
}

func (conf *Config) Validate() error {
	if conf.Width <= 0 || conf.Height <= 0 {
		return fmt.Errorf("invalid frame dimensions %dx%d", conf.Width, conf.Height)
	}
	if conf.FrameRate <= 0 || math.IsNaN(conf.FrameRate) || math.IsInf(conf.FrameRate, 0) {
		return errors.New("frame-rate must be a positive number")
	}
	if conf.Mode != Sparse && conf.Mode != Dense {
		return fmt.Errorf("unknown flow mode %v", conf.Mode)
	}
	if conf.CannyLow < 0 || conf.CannyHigh < conf.CannyLow {
		return errors.New("canny thresholds should be non-negative with high >= low")
	}
	switch conf.Mode {
	case Sparse:
		return conf.SparseFlow.Validate()
	default:
		return conf.DenseFlow.Validate()
	}
}

func (conf *SparseFlowConfig) Validate() error {
	if conf.WindowSize < 3 {
		return errors.New("sparse window-size should be at least 3")
	}
	if conf.MaxLevel < 0 {
		return errors.New("sparse max-level can't be negative")
	}
	if conf.MaxIterations < 1 && conf.Epsilon <= 0 {
		return errors.New("sparse flow needs max-iterations or epsilon to terminate")
	}
	return nil
}

func (conf *DenseFlowConfig) Validate() error {
	if conf.PyramidScale <= 0 || conf.PyramidScale >= 1 {
		return errors.New("dense pyramid-scale should be in range (0, 1)")
	}
	if conf.Levels < 1 || conf.WindowSize < 1 || conf.Iterations < 1 {
		return errors.New("dense levels, window-size and iterations should be positive")
	}
	if conf.PolyN != 5 && conf.PolyN != 7 {
		return errors.New("dense poly-n should be 5 or 7")
	}
	if conf.PolySigma <= 0 {
		return errors.New("dense poly-sigma should be positive")
	}
	return nil
}
