package material

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrUnknownMaterial is returned when a name matches no preset.
var ErrUnknownMaterial = errors.New("unknown material")

// Material holds the elastic properties used for bending analysis.
type Material struct {
	Name    string  `json:"name" yaml:"name"`
	Modulus float64 `json:"modulus" yaml:"modulus"` // Young's modulus E (Pa)
}

// Material names
const (
	Steel    = "steel"
	Wood     = "wood"
	Aluminum = "aluminum"
	Concrete = "concrete"
)

// ConcreteFc is the compressive strength f'c (MPa) of the concrete preset.
const ConcreteFc = 28.0

// ConcreteModulus returns the modulus of elasticity of normal-weight concrete
// in pascals. NSCP 2015 Section 419.2.2.1: Ec = 4700√f'c (MPa).
func ConcreteModulus(fc float64) float64 {
	return 4700 * math.Sqrt(fc) * 1e6
}

var presets = map[string]Material{
	Steel:    {Name: Steel, Modulus: 210e9},
	Wood:     {Name: Wood, Modulus: 11e9},
	Aluminum: {Name: Aluminum, Modulus: 69e9},
	Concrete: {Name: Concrete, Modulus: ConcreteModulus(ConcreteFc)},
}

// Spanish names and common spellings.
var aliases = map[string]string{
	"acero":     Steel,
	"madera":    Wood,
	"timber":    Wood,
	"aluminio":  Aluminum,
	"aluminium": Aluminum,
	"concreto":  Concrete,
	"hormigon":  Concrete,
}

// Lookup resolves a material by name, case-insensitively.
func Lookup(name string) (Material, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	m, ok := presets[key]
	if !ok {
		return Material{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	return m, nil
}

// Canonical returns the preset name for name or an alias of it.
func Canonical(name string) (string, error) {
	m, err := Lookup(name)
	if err != nil {
		return "", err
	}
	return m.Name, nil
}

// All returns the presets sorted by decreasing stiffness.
func All() []Material {
	list := make([]Material, 0, len(presets))
	for _, m := range presets {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Modulus > list[j].Modulus
	})
	return list
}
