package section

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidSection is returned for unknown section kinds and degenerate geometry.
var ErrInvalidSection = errors.New("invalid section")

// Kind identifies a cross-section variant.
type Kind int

const (
	Rectangular Kind = iota + 1
	Circular
	IBeam

	// Custom marks a user-defined polygon. It has no preset and cannot be
	// stored in a beam configuration file.
	Custom
)

// Kinds lists the preset kinds in display order.
var Kinds = []Kind{Rectangular, Circular, IBeam}

func (k Kind) String() string {
	switch k {
	case Rectangular:
		return "rectangular"
	case Circular:
		return "circular"
	case IBeam:
		return "i-beam"
	case Custom:
		return "custom"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves a section name. Besides the canonical names it accepts
// short forms such as "I", "rect" and "circle".
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rectangular", "rect", "rectangle":
		return Rectangular, nil
	case "circular", "circle", "round":
		return Circular, nil
	case "i-beam", "ibeam", "i", "i_beam":
		return IBeam, nil
	}
	return 0, fmt.Errorf("%w: unknown section kind %q", ErrInvalidSection, name)
}

// MarshalText encodes preset kinds by name.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case Rectangular, Circular, IBeam:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("%w: kind %s cannot be serialized", ErrInvalidSection, k)
}

// UnmarshalText decodes a kind name through ParseKind.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Profile is a cross-section with the geometric properties needed for bending.
// All lengths are in meters.
type Profile interface {
	Kind() Kind
	Area() float64
	Inertia() float64      // second moment of area about the horizontal centroidal axis (m⁴)
	Depth() float64        // total height
	ExtremeFiber() float64 // largest distance from the centroid to the top or bottom face
}

// Rectangle is a solid rectangular section.
type Rectangle struct {
	Base   float64 `json:"base"`
	Height float64 `json:"height"`
}

func (r Rectangle) Kind() Kind { return Rectangular }
func (r Rectangle) Area() float64 { return r.Base * r.Height }
func (r Rectangle) Inertia() float64 { return r.Base * math.Pow(r.Height, 3) / 12 }
func (r Rectangle) Depth() float64 { return r.Height }
func (r Rectangle) ExtremeFiber() float64 { return r.Height / 2 }

// Circle is a solid circular section.
type Circle struct {
	Radius float64 `json:"radius"`
}

func (c Circle) Kind() Kind { return Circular }
func (c Circle) Area() float64 { return math.Pi * c.Radius * c.Radius }
func (c Circle) Inertia() float64 { return math.Pi * math.Pow(c.Radius, 4) / 4 }
func (c Circle) Depth() float64 { return 2 * c.Radius }
func (c Circle) ExtremeFiber() float64 { return c.Radius }

// IShape is a doubly symmetric I-section.
type IShape struct {
	Height          float64 `json:"height"`
	WebWidth        float64 `json:"web_width"`
	FlangeWidth     float64 `json:"flange_width"`
	FlangeThickness float64 `json:"flange_thickness"`
}

func (s IShape) Kind() Kind { return IBeam }

func (s IShape) Area() float64 {
	return 2*s.FlangeWidth*s.FlangeThickness + s.WebWidth*(s.Height-2*s.FlangeThickness)
}

// Inertia subtracts the two voids beside the web from the bounding rectangle.
func (s IShape) Inertia() float64 {
	inner := s.Height - 2*s.FlangeThickness
	return s.FlangeWidth*math.Pow(s.Height, 3)/12 -
		(s.FlangeWidth-s.WebWidth)*math.Pow(inner, 3)/12
}

func (s IShape) Depth() float64 { return s.Height }
func (s IShape) ExtremeFiber() float64 { return s.Height / 2 }

// Preset dimensions (m).
var (
	PresetRectangle = Rectangle{Base: 0.2, Height: 0.3}
	PresetCircle    = Circle{Radius: 0.15}
	PresetIShape    = IShape{Height: 0.3, WebWidth: 0.02, FlangeWidth: 0.1, FlangeThickness: 0.02}
)

// Preset returns the fixed profile for a kind.
func Preset(k Kind) (Profile, error) {
	switch k {
	case Rectangular:
		return PresetRectangle, nil
	case Circular:
		return PresetCircle, nil
	case IBeam:
		return PresetIShape, nil
	}
	return nil, fmt.Errorf("%w: no preset for kind %s", ErrInvalidSection, k)
}

// Inertia returns the second moment of area of the preset for a kind.
func Inertia(k Kind) (float64, error) {
	p, err := Preset(k)
	if err != nil {
		return 0, err
	}
	return p.Inertia(), nil
}
