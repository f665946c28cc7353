package beam

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/alexiusacademia/gobeam/internal/material"
	"github.com/alexiusacademia/gobeam/internal/section"
)

// DefaultSamples is the number of stations along the span.
const DefaultSamples = 500

// DeflectionMethod selects how the elastic curve is obtained.
type DeflectionMethod int

const (
	// ClosedForm evaluates the Euler-Bernoulli solution for a simply
	// supported beam with a point load. Deflection is zero at both supports.
	ClosedForm DeflectionMethod = iota

	// Integration integrates curvature M/EI twice with left rectangles,
	// starting from zero slope and deflection at the left support. The right
	// support condition is not enforced.
	Integration
)

func (m DeflectionMethod) String() string {
	switch m {
	case ClosedForm:
		return "closed-form"
	case Integration:
		return "integration"
	}
	return fmt.Sprintf("DeflectionMethod(%d)", int(m))
}

// ParseMethod resolves a deflection method name.
func ParseMethod(name string) (DeflectionMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "closed-form", "closed", "exact", "":
		return ClosedForm, nil
	case "integration", "integrated", "numeric":
		return Integration, nil
	}
	return 0, fmt.Errorf("%w: unknown deflection method %q", ErrInvalidInput, name)
}

func (m DeflectionMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *DeflectionMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Sample is one station of the diagrams.
type Sample struct {
	X          float64 `json:"x" yaml:"x"`                   // m
	Moment     float64 `json:"moment" yaml:"moment"`         // N·m, sagging positive
	Shear      float64 `json:"shear" yaml:"shear"`           // N
	Deflection float64 `json:"deflection" yaml:"deflection"` // m, downward positive
}

// Extremum is the largest absolute value of a diagram and where it occurs.
type Extremum struct {
	X     float64 `json:"x" yaml:"x"`
	Value float64 `json:"value" yaml:"value"`
}

// Result holds the outcome of one analysis
type Result struct {
	Config  Configuration    `json:"config" yaml:"config"`
	Section string           `json:"section" yaml:"section"`
	Modulus float64          `json:"modulus" yaml:"modulus"` // E (Pa)
	Inertia float64          `json:"inertia" yaml:"inertia"` // I (m⁴)
	Method  DeflectionMethod `json:"method" yaml:"method"`

	// Support reactions (N)
	R1 float64 `json:"r1" yaml:"r1"`
	R2 float64 `json:"r2" yaml:"r2"`

	MaxMoment     Extremum `json:"max_moment" yaml:"max_moment"`
	MaxShear      Extremum `json:"max_shear" yaml:"max_shear"`
	MaxDeflection Extremum `json:"max_deflection" yaml:"max_deflection"`
	MaxStress     float64  `json:"max_stress" yaml:"max_stress"` // extreme fiber bending stress (Pa)

	Samples []Sample `json:"samples" yaml:"samples"`
}

// Reactions returns the left and right support reactions for a point load
// at distance position from the left support.
func Reactions(length, load, position float64) (r1, r2 float64, err error) {
	if err := checkSpan(length, load, position); err != nil {
		return 0, 0, err
	}
	r1 = load * (length - position) / length
	r2 = load - r1
	return r1, r2, nil
}

// Analyzer computes diagrams for simply supported beams.
type Analyzer struct {
	Samples int
	Method  DeflectionMethod
}

// NewAnalyzer creates an analyzer with the default sampling and method.
func NewAnalyzer() *Analyzer {
	return &Analyzer{Samples: DefaultSamples, Method: ClosedForm}
}

// Diagrams samples bending moment, shear and deflection over [0, length].
func (an *Analyzer) Diagrams(length, position, load, modulus, inertia float64) ([]Sample, error) {
	r1, _, err := Reactions(length, load, position)
	if err != nil {
		return nil, err
	}
	if !finite(modulus) || modulus <= 0 {
		return nil, fmt.Errorf("%w: elastic modulus must be positive, got %g", ErrInvalidInput, modulus)
	}
	if !finite(inertia) || inertia <= 0 {
		return nil, fmt.Errorf("%w: inertia must be positive, got %g", ErrInvalidInput, inertia)
	}
	n := an.Samples
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidInput, n)
	}

	ei := modulus * inertia
	if !finite(ei) || ei <= 0 {
		return nil, fmt.Errorf("%w: flexural rigidity EI = %g is not representable", ErrInvalidInput, ei)
	}

	xs := floats.Span(make([]float64, n), 0, length)
	samples := make([]Sample, n)
	for i, x := range xs {
		samples[i] = Sample{
			X:      x,
			Moment: momentAt(r1, load, position, x),
			Shear:  shearAt(r1, load, position, x),
		}
	}

	switch an.Method {
	case ClosedForm:
		for i := range samples {
			samples[i].Deflection = closedFormDeflection(samples[i].X, length, position, load, ei)
		}
	case Integration:
		dx := length / float64(n-1)
		var theta float64
		for i := 1; i < n; i++ {
			samples[i].Deflection = samples[i-1].Deflection + theta*dx
			theta += samples[i-1].Moment / ei * dx
		}
	default:
		return nil, fmt.Errorf("%w: unknown deflection method %s", ErrInvalidInput, an.Method)
	}

	if err := checkSamples(samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// checkSamples rejects a series holding NaN or an infinity. Inputs that are
// finite on their own can still overflow in L² or P·L³/EI.
func checkSamples(samples []Sample) error {
	for _, s := range samples {
		if !finite(s.Moment) || !finite(s.Shear) || !finite(s.Deflection) {
			return fmt.Errorf("%w: results at x = %g are out of floating point range", ErrInvalidInput, s.X)
		}
	}
	return nil
}

// MomentAt evaluates the bending moment at x without sampling.
func MomentAt(length, load, position, x float64) float64 {
	return momentAt(load*(length-position)/length, load, position, x)
}

// ShearAt evaluates the shear force at x. At the load point it returns the
// value just left of the load.
func ShearAt(length, load, position, x float64) float64 {
	return shearAt(load*(length-position)/length, load, position, x)
}

func momentAt(r1, load, position, x float64) float64 {
	if x <= position {
		return r1 * x
	}
	return r1*x - load*(x-position)
}

func shearAt(r1, load, position, x float64) float64 {
	if x <= position {
		return r1
	}
	return r1 - load
}

// closedFormDeflection is the downward deflection at x of a simply supported
// span with a point load at a.
func closedFormDeflection(x, length, a, load, ei float64) float64 {
	if x <= a {
		b := length - a
		return load * b * x * (length*length - b*b - x*x) / (6 * length * ei)
	}
	u := length - x
	return load * a * u * (length*length - a*a - u*u) / (6 * length * ei)
}

// Analyze resolves the preset section and material of cfg and runs the analysis.
func (an *Analyzer) Analyze(cfg Configuration) (*Result, error) {
	prof, err := section.Preset(cfg.Section)
	if err != nil {
		return nil, err
	}
	mat, err := material.Lookup(cfg.Material)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return an.AnalyzeWith(cfg, prof, mat)
}

// AnalyzeWith runs the analysis with an explicit profile and material,
// ignoring the section and material names stored in cfg.
func (an *Analyzer) AnalyzeWith(cfg Configuration, prof section.Profile, mat material.Material) (*Result, error) {
	if prof == nil {
		return nil, fmt.Errorf("%w: no profile", ErrInvalidSection)
	}
	inertia := prof.Inertia()
	if !finite(inertia) || inertia <= 0 {
		return nil, fmt.Errorf("%w: %s has non-positive inertia", ErrInvalidSection, prof.Kind())
	}

	r1, r2, err := Reactions(cfg.Length, cfg.Load, cfg.LoadPosition)
	if err != nil {
		return nil, err
	}

	samples, err := an.Diagrams(cfg.Length, cfg.LoadPosition, cfg.Load, mat.Modulus, inertia)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Config:  cfg,
		Section: prof.Kind().String(),
		Modulus: mat.Modulus,
		Inertia: inertia,
		Method:  an.Method,
		R1:      r1,
		R2:      r2,
		Samples: samples,
	}

	result.MaxMoment = extremum(samples, func(s Sample) float64 { return s.Moment })
	result.MaxShear = extremum(samples, func(s Sample) float64 { return s.Shear })
	result.MaxDeflection = extremum(samples, func(s Sample) float64 { return s.Deflection })

	// σ = M·c/I
	result.MaxStress = math.Abs(result.MaxMoment.Value) * prof.ExtremeFiber() / inertia
	if !finite(result.MaxStress) {
		return nil, fmt.Errorf("%w: bending stress is out of floating point range", ErrInvalidInput)
	}

	return result, nil
}

// extremum returns the first sample with the largest absolute value.
func extremum(samples []Sample, value func(Sample) float64) Extremum {
	var best Extremum
	for i, s := range samples {
		v := value(s)
		if i == 0 || math.Abs(v) > math.Abs(best.Value) {
			best = Extremum{X: s.X, Value: v}
		}
	}
	return best
}

// Moments returns the moment column of samples.
func Moments(samples []Sample) []float64 {
	return column(samples, func(s Sample) float64 { return s.Moment })
}

// Shears returns the shear column of samples.
func Shears(samples []Sample) []float64 {
	return column(samples, func(s Sample) float64 { return s.Shear })
}

// Deflections returns the deflection column of samples.
func Deflections(samples []Sample) []float64 {
	return column(samples, func(s Sample) float64 { return s.Deflection })
}

// Positions returns the station column of samples.
func Positions(samples []Sample) []float64 {
	return column(samples, func(s Sample) float64 { return s.X })
}

func column(samples []Sample, value func(Sample) float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = value(s)
	}
	return out
}
