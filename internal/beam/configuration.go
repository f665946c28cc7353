package beam

import (
	"errors"
	"fmt"
	"math"

	"github.com/alexiusacademia/gobeam/internal/material"
	"github.com/alexiusacademia/gobeam/internal/section"
)

var (
	// ErrInvalidInput reports a configuration or numeric argument that would
	// make the analysis undefined.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidSection reports an unknown or degenerate cross-section.
	ErrInvalidSection = section.ErrInvalidSection
)

// Configuration is a simply supported beam with a single point load.
// It is the unit of persisted state.
type Configuration struct {
	Length       float64      `json:"length" yaml:"length"`               // span L (m)
	LoadPosition float64      `json:"load_position" yaml:"load_position"` // a, from the left support (m)
	Load         float64      `json:"load" yaml:"load"`                   // P (N)
	Material     string       `json:"material" yaml:"material"`
	Section      section.Kind `json:"section" yaml:"section"`
}

// Default returns the configuration used when nothing has been saved yet.
func Default() Configuration {
	return Configuration{
		Length:       10.0,
		LoadPosition: 5.0,
		Load:         1000.0,
		Material:     material.Steel,
		Section:      section.Rectangular,
	}
}

// Validate checks geometry, load, material and section.
func (c Configuration) Validate() error {
	if err := checkSpan(c.Length, c.Load, c.LoadPosition); err != nil {
		return err
	}
	if _, err := material.Lookup(c.Material); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if _, err := section.Preset(c.Section); err != nil {
		return err
	}
	return nil
}

func checkSpan(length, load, position float64) error {
	if !finite(length) || length <= 0 {
		return fmt.Errorf("%w: length must be positive, got %g", ErrInvalidInput, length)
	}
	if !finite(load) || load < 0 {
		return fmt.Errorf("%w: load must be non-negative, got %g", ErrInvalidInput, load)
	}
	if !finite(position) || position < 0 || position > length {
		return fmt.Errorf("%w: load position %g outside [0, %g]", ErrInvalidInput, position, length)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
