package beam

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/alexiusacademia/gobeam/internal/material"
	"github.com/alexiusacademia/gobeam/internal/section"
)

const tol = 1e-9

func TestReactionsSumToLoad(t *testing.T) {
	for _, length := range []float64{5, 7.5, 10, 20} {
		for _, load := range []float64{0, 1, 1000, 12345.6} {
			for i := 0; i <= 10; i++ {
				position := length * float64(i) / 10
				r1, r2, err := Reactions(length, load, position)
				if err != nil {
					t.Fatalf("Reactions(%g, %g, %g) failed: %v", length, load, position, err)
				}
				if !scalar.EqualWithinAbsOrRel(r1+r2, load, tol, tol) {
					t.Errorf("R1+R2 = %g, want %g (L=%g a=%g)", r1+r2, load, length, position)
				}
			}
		}
	}
}

func TestReactionsAtSupports(t *testing.T) {
	r1, r2, _ := Reactions(10, 1000, 0)
	if r1 != 1000 || r2 != 0 {
		t.Errorf("load on left support: R1=%g R2=%g", r1, r2)
	}
	r1, r2, _ = Reactions(10, 1000, 10)
	if r1 != 0 || r2 != 1000 {
		t.Errorf("load on right support: R1=%g R2=%g", r1, r2)
	}
}

func TestReactionsInvalid(t *testing.T) {
	tests := []struct {
		name                   string
		length, load, position float64
	}{
		{"zero length", 0, 1000, 0},
		{"negative length", -1, 1000, 0},
		{"position beyond span", 10, 1000, 10.5},
		{"negative position", 10, 1000, -0.1},
		{"negative load", 10, -5, 5},
		{"nan length", math.NaN(), 1000, 5},
		{"infinite load", 10, math.Inf(1), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Reactions(tt.length, tt.load, tt.position); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Reactions() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestMomentContinuityAtLoad(t *testing.T) {
	for _, a := range []float64{0.5, 2, 5, 8.3, 9.9} {
		length, load := 10.0, 1000.0
		r1, r2, _ := Reactions(length, load, a)

		left := r1 * a
		right := r1*a - load*(a-a)
		mirrored := r2 * (length - a)
		if !scalar.EqualWithinAbsOrRel(left, right, tol, tol) || !scalar.EqualWithinAbsOrRel(left, mirrored, tol, tol) {
			t.Errorf("a=%g: M(a-)=%g, M(a+)=%g, R2(L-a)=%g", a, left, right, mirrored)
		}

		// Just past the load the moment approaches the same value.
		eps := 1e-9
		if got := MomentAt(length, load, a, a+eps); math.Abs(got-left) > 1e-3 {
			t.Errorf("a=%g: MomentAt(a+eps) = %g, want about %g", a, got, left)
		}
	}
}

func TestMomentFormsAgree(t *testing.T) {
	length, load, a := 12.0, 2500.0, 4.0
	_, r2, _ := Reactions(length, load, a)

	an := NewAnalyzer()
	samples, err := an.Diagrams(length, a, load, 210e9, 4.5e-4)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range samples {
		if s.X <= a {
			continue
		}
		if want := r2 * (length - s.X); !scalar.EqualWithinAbsOrRel(s.Moment, want, 1e-7, 1e-9) {
			t.Errorf("x=%g: M=%g, R2(L-x)=%g", s.X, s.Moment, want)
		}
	}
}

func TestShearStep(t *testing.T) {
	length, load, a := 10.0, 1000.0, 3.0
	r1, _, _ := Reactions(length, load, a)

	an := NewAnalyzer()
	samples, err := an.Diagrams(length, a, load, 210e9, 4.5e-4)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range samples {
		want := r1
		if s.X > a {
			want = r1 - load
		}
		if s.Shear != want {
			t.Errorf("x=%g: V=%g, want %g", s.X, s.Shear, want)
		}
	}

	jump := ShearAt(length, load, a, a+1e-9) - ShearAt(length, load, a, a)
	if !scalar.EqualWithinAbs(jump, -load, tol) {
		t.Errorf("shear jump at load = %g, want %g", jump, -load)
	}
}

func TestCenteredLoadSymmetry(t *testing.T) {
	length, load := 8.0, 900.0
	r1, r2, _ := Reactions(length, load, length/2)
	if !scalar.EqualWithinAbs(r1, load/2, tol) || !scalar.EqualWithinAbs(r2, load/2, tol) {
		t.Errorf("R1=%g R2=%g, want %g each", r1, r2, load/2)
	}

	an := NewAnalyzer()
	samples, err := an.Diagrams(length, length/2, load, 11e9, 4.5e-4)
	if err != nil {
		t.Fatal(err)
	}
	n := len(samples)
	for i := 0; i < n/2; i++ {
		l, r := samples[i], samples[n-1-i]
		if !scalar.EqualWithinAbsOrRel(l.Moment, r.Moment, 1e-7, 1e-9) {
			t.Errorf("M(%g)=%g but M(%g)=%g", l.X, l.Moment, r.X, r.Moment)
		}
		if !scalar.EqualWithinAbsOrRel(l.Deflection, r.Deflection, 1e-15, 1e-9) {
			t.Errorf("δ(%g)=%g but δ(%g)=%g", l.X, l.Deflection, r.X, r.Deflection)
		}
	}
}

func TestClosedFormDeflection(t *testing.T) {
	length, load, e := 10.0, 1000.0, 210e9
	inertia, _ := section.Inertia(section.Rectangular)

	an := &Analyzer{Samples: 501, Method: ClosedForm}
	samples, err := an.Diagrams(length, length/2, load, e, inertia)
	if err != nil {
		t.Fatal(err)
	}

	if samples[0].Deflection != 0 {
		t.Errorf("δ(0) = %g, want 0", samples[0].Deflection)
	}
	if got := samples[len(samples)-1].Deflection; !scalar.EqualWithinAbs(got, 0, 1e-18) {
		t.Errorf("δ(L) = %g, want 0", got)
	}

	// PL³/48EI at midspan
	want := load * math.Pow(length, 3) / (48 * e * inertia)
	if got := samples[250].Deflection; !scalar.EqualWithinRel(got, want, 1e-9) {
		t.Errorf("δ(L/2) = %g, want %g", got, want)
	}
}

func TestIntegrationDeflection(t *testing.T) {
	length, load, e, inertia := 10.0, 1000.0, 210e9, 4.5e-4
	an := &Analyzer{Samples: 11, Method: Integration}
	samples, err := an.Diagrams(length, 5, load, e, inertia)
	if err != nil {
		t.Fatal(err)
	}

	// Left-rectangle recurrence: δ1 = 0, δ2 = θ1·dx = M0/EI·dx² = 0, δ3 = θ2·dx
	dx := 1.0
	ei := e * inertia
	theta2 := (samples[0].Moment + samples[1].Moment) / ei * dx
	if samples[1].Deflection != 0 || samples[2].Deflection != 0 {
		t.Errorf("first stations = %g, %g, want 0", samples[1].Deflection, samples[2].Deflection)
	}
	if !scalar.EqualWithinRel(samples[3].Deflection, theta2*dx, 1e-12) {
		t.Errorf("δ3 = %g, want %g", samples[3].Deflection, theta2*dx)
	}

	// Curvature never changes sign, so the integrated curve only grows.
	for i := 1; i < len(samples); i++ {
		if samples[i].Deflection < samples[i-1].Deflection {
			t.Errorf("integrated deflection decreased at x=%g", samples[i].X)
		}
	}
}

func TestDiagramsInvalid(t *testing.T) {
	tests := []struct {
		name                                     string
		an                                       *Analyzer
		length, position, load, modulus, inertia float64
	}{
		{"zero length", NewAnalyzer(), 0, 0, 1000, 210e9, 4.5e-4},
		{"zero modulus", NewAnalyzer(), 10, 5, 1000, 0, 4.5e-4},
		{"zero inertia", NewAnalyzer(), 10, 5, 1000, 210e9, 0},
		{"position outside", NewAnalyzer(), 10, 11, 1000, 210e9, 4.5e-4},
		{"one sample", &Analyzer{Samples: 1}, 10, 5, 1000, 210e9, 4.5e-4},
		{"bad method", &Analyzer{Samples: 10, Method: DeflectionMethod(9)}, 10, 5, 1000, 210e9, 4.5e-4},
		{"EI underflows", NewAnalyzer(), 10, 5, 1000, 1e-200, 1e-200},
		{"EI overflows", NewAnalyzer(), 10, 5, 1000, 1e200, 1e200},
		{"span squared overflows", NewAnalyzer(), 1e160, 5e159, 1000, 210e9, 4.5e-4},
		{"span squared overflows integrated", &Analyzer{Samples: 50, Method: Integration}, 1e160, 5e159, 1000, 210e9, 4.5e-4},
		{"deflection overflows", NewAnalyzer(), 1e100, 5e99, 1e200, 210e9, 4.5e-4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.an.Diagrams(tt.length, tt.position, tt.load, tt.modulus, tt.inertia)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Diagrams() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestAnalyzeReferenceScenario(t *testing.T) {
	an := NewAnalyzer()
	res, err := an.Analyze(Default())
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}

	if len(res.Samples) != DefaultSamples {
		t.Errorf("got %d samples, want %d", len(res.Samples), DefaultSamples)
	}
	if res.R1 != 500 || res.R2 != 500 {
		t.Errorf("R1=%g R2=%g, want 500 each", res.R1, res.R2)
	}
	if res.Modulus != 210e9 {
		t.Errorf("Modulus = %g, want 210e9", res.Modulus)
	}
	if got := MomentAt(10, 1000, 5, 5); got != 2500 {
		t.Errorf("M(5) = %g, want 2500", got)
	}

	dx := 10.0 / float64(DefaultSamples-1)
	if math.Abs(res.MaxMoment.X-5) > dx || math.Abs(res.MaxMoment.Value-2500) > 1000*dx {
		t.Errorf("peak moment %g at x=%g, want 2500 at 5", res.MaxMoment.Value, res.MaxMoment.X)
	}
	if math.Abs(res.MaxDeflection.X-5) > dx {
		t.Errorf("max deflection at x=%g, want 5", res.MaxDeflection.X)
	}

	// Deflection grows towards midspan and shrinks after it.
	for i := 1; i < len(res.Samples); i++ {
		prev, cur := res.Samples[i-1], res.Samples[i]
		if cur.X <= 5 && cur.Deflection < prev.Deflection {
			t.Errorf("deflection decreased before midspan at x=%g", cur.X)
		}
		if prev.X >= 5 && cur.Deflection > prev.Deflection {
			t.Errorf("deflection increased after midspan at x=%g", cur.X)
		}
	}

	// σ = M·c/I with c = 0.15 m
	wantStress := math.Abs(res.MaxMoment.Value) * 0.15 / 4.5e-4
	if !scalar.EqualWithinRel(res.MaxStress, wantStress, 1e-12) {
		t.Errorf("MaxStress = %g, want %g", res.MaxStress, wantStress)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	an := NewAnalyzer()

	cfg := Default()
	cfg.Section = section.Kind(99)
	if _, err := an.Analyze(cfg); !errors.Is(err, ErrInvalidSection) {
		t.Errorf("unknown section: error = %v, want ErrInvalidSection", err)
	}

	cfg = Default()
	cfg.Material = "cheese"
	_, err := an.Analyze(cfg)
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, material.ErrUnknownMaterial) {
		t.Errorf("unknown material: error = %v, want ErrInvalidInput and ErrUnknownMaterial", err)
	}

	cfg = Default()
	cfg.Length = 0
	if _, err := an.Analyze(cfg); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero length: error = %v, want ErrInvalidInput", err)
	}

	cfg = Default()
	cfg.Length, cfg.LoadPosition = 1e160, 5e159
	if _, err := an.Analyze(cfg); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("huge span: error = %v, want ErrInvalidInput", err)
	}

	if _, err := an.AnalyzeWith(Default(), nil, material.Material{Modulus: 1}); !errors.Is(err, ErrInvalidSection) {
		t.Errorf("nil profile: error = %v, want ErrInvalidSection", err)
	}
	if _, err := an.AnalyzeWith(Default(), section.PresetRectangle, material.Material{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero modulus: error = %v, want ErrInvalidInput", err)
	}
}

func TestAnalyzeWithPolygon(t *testing.T) {
	poly := &section.Polygon{Vertices: section.Outline(section.PresetIShape, 0)}
	steel, _ := material.Lookup(material.Steel)

	an := NewAnalyzer()
	res, err := an.AnalyzeWith(Default(), poly, steel)
	if err != nil {
		t.Fatalf("AnalyzeWith() failed: %v", err)
	}
	if res.Section != "custom" {
		t.Errorf("Section = %q, want custom", res.Section)
	}
	if !scalar.EqualWithinRel(res.Inertia, section.PresetIShape.Inertia(), 1e-12) {
		t.Errorf("Inertia = %g, want %g", res.Inertia, section.PresetIShape.Inertia())
	}
}

func TestConfigurationValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}

	cfg := Default()
	cfg.LoadPosition = 12
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Validate() = %v, want ErrInvalidInput", err)
	}

	cfg = Default()
	cfg.Section = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidSection) {
		t.Errorf("Validate() = %v, want ErrInvalidSection", err)
	}
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]DeflectionMethod{
		"closed-form": ClosedForm,
		"":            ClosedForm,
		"Integration": Integration,
	} {
		got, err := ParseMethod(in)
		if err != nil || got != want {
			t.Errorf("ParseMethod(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMethod("magic"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ParseMethod(magic) error = %v", err)
	}
}
