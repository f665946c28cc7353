package section

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Point represents a 2D coordinate (m)
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon is a custom section defined by its outline.
// Vertices describe a simple polygon (no holes) in either winding order;
// Y points upward.
type Polygon struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Vertices    []Point `json:"vertices"`
}

// LoadFromFile loads a polygon section definition from a JSON file
func LoadFromFile(path string) (*Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Polygon
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidSection, path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// Validate checks that the outline encloses a positive area.
func (p *Polygon) Validate() error {
	if len(p.Vertices) < 3 {
		return fmt.Errorf("%w: polygon must have at least 3 vertices", ErrInvalidSection)
	}
	for i, v := range p.Vertices {
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
			return fmt.Errorf("%w: vertex %d is not finite", ErrInvalidSection, i+1)
		}
	}
	if p.Area() <= 0 {
		return fmt.Errorf("%w: polygon has zero area", ErrInvalidSection)
	}
	return nil
}

func (p *Polygon) Kind() Kind { return Custom }

// Area uses the shoelace formula
func (p *Polygon) Area() float64 {
	area, _, _ := p.areaAndCentroid()
	return math.Abs(area)
}

// Centroid returns the centroid of the outline.
func (p *Polygon) Centroid() Point {
	_, cx, cy := p.areaAndCentroid()
	return Point{X: cx, Y: cy}
}

// Inertia returns the second moment of area about the horizontal axis
// through the centroid.
func (p *Polygon) Inertia() float64 {
	n := len(p.Vertices)
	if n < 3 {
		return 0
	}

	signedArea, _, cy := p.areaAndCentroid()
	if signedArea == 0 {
		return 0
	}

	var ix float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		vi, vj := p.Vertices[i], p.Vertices[j]
		cross := vi.X*vj.Y - vj.X*vi.Y
		ix += cross * (vi.Y*vi.Y + vi.Y*vj.Y + vj.Y*vj.Y)
	}
	ix /= 12

	// Winding order only flips the sign; shift from the x-axis to the centroid.
	return math.Abs(ix) - math.Abs(signedArea)*cy*cy
}

// Depth returns the vertical extent of the outline.
func (p *Polygon) Depth() float64 {
	minY, maxY := p.boundsY()
	return maxY - minY
}

// ExtremeFiber returns the larger centroid-to-face distance.
func (p *Polygon) ExtremeFiber() float64 {
	minY, maxY := p.boundsY()
	cy := p.Centroid().Y
	return math.Max(maxY-cy, cy-minY)
}

func (p *Polygon) boundsY() (minY, maxY float64) {
	if len(p.Vertices) == 0 {
		return 0, 0
	}
	minY, maxY = p.Vertices[0].Y, p.Vertices[0].Y
	for _, v := range p.Vertices {
		minY = math.Min(minY, v.Y)
		maxY = math.Max(maxY, v.Y)
	}
	return minY, maxY
}

// areaAndCentroid returns the signed area and the centroid.
func (p *Polygon) areaAndCentroid() (area, cx, cy float64) {
	n := len(p.Vertices)
	if n < 3 {
		return 0, 0, 0
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := p.Vertices[i].X*p.Vertices[j].Y - p.Vertices[j].X*p.Vertices[i].Y
		area += cross
		sumX += (p.Vertices[i].X + p.Vertices[j].X) * cross
		sumY += (p.Vertices[i].Y + p.Vertices[j].Y) * cross
	}

	area /= 2
	if area != 0 {
		cx = sumX / (6 * area)
		cy = sumY / (6 * area)
	}

	return area, cx, cy
}

// Outline returns the polygon vertices of a preset profile, centered
// on the origin. Circles are approximated with segments vertices.
func Outline(p Profile, segments int) []Point {
	switch s := p.(type) {
	case Rectangle:
		hb, hh := s.Base/2, s.Height/2
		return []Point{{-hb, -hh}, {hb, -hh}, {hb, hh}, {-hb, hh}}
	case Circle:
		if segments < 8 {
			segments = 8
		}
		pts := make([]Point, segments)
		for i := range pts {
			t := 2 * math.Pi * float64(i) / float64(segments)
			pts[i] = Point{s.Radius * math.Cos(t), s.Radius * math.Sin(t)}
		}
		return pts
	case IShape:
		hf, hw, hh := s.FlangeWidth/2, s.WebWidth/2, s.Height/2
		inner := hh - s.FlangeThickness
		return []Point{
			{-hf, -hh}, {hf, -hh}, {hf, -inner}, {hw, -inner},
			{hw, inner}, {hf, inner}, {hf, hh}, {-hf, hh},
			{-hf, inner}, {-hw, inner}, {-hw, -inner}, {-hf, -inner},
		}
	case *Polygon:
		return append([]Point(nil), s.Vertices...)
	}
	return nil
}
