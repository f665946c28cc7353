package loads

import "math"

// Combination represents an NSCP load combination
// Based on NSCP 2015 Section 203.3 - Load Combinations Using Strength Design
type Combination struct {
	ID          string
	Description string
	// Load factors for each load type
	Dead       float64 // D - Dead load
	Live       float64 // L - Live load
	RoofOrRain float64 // (Lr or R) - applied to the larger of roof live and rain load
	Wind       float64 // W - Wind load
	Earthquake float64 // E - Earthquake load
}

// NSCP 2015 Section 203.3.1 - Basic Load Combinations
var Combinations = []Combination{
	{
		ID:          "1",
		Description: "1.4D",
		Dead:        1.4,
	},
	{
		ID:          "2",
		Description: "1.2D + 1.6L + 0.5(Lr or R)",
		Dead:        1.2,
		Live:        1.6,
		RoofOrRain:  0.5,
	},
	{
		ID:          "3a",
		Description: "1.2D + 1.6(Lr or R) + 1.0L",
		Dead:        1.2,
		Live:        1.0,
		RoofOrRain:  1.6,
	},
	{
		ID:          "3b",
		Description: "1.2D + 1.6(Lr or R) + 0.5W",
		Dead:        1.2,
		RoofOrRain:  1.6,
		Wind:        0.5,
	},
	{
		ID:          "4",
		Description: "1.2D + 1.0W + 1.0L + 0.5(Lr or R)",
		Dead:        1.2,
		Live:        1.0,
		Wind:        1.0,
		RoofOrRain:  0.5,
	},
	{
		ID:          "5",
		Description: "1.2D + 1.0E + 1.0L",
		Dead:        1.2,
		Live:        1.0,
		Earthquake:  1.0,
	},
	{
		ID:          "6",
		Description: "0.9D + 1.0W",
		Dead:        0.9,
		Wind:        1.0,
	},
	{
		ID:          "7",
		Description: "0.9D + 1.0E",
		Dead:        0.9,
		Earthquake:  1.0,
	},
}

// Simplified gravity-only combinations
var Simplified = []Combination{
	{
		ID:          "1",
		Description: "1.4D",
		Dead:        1.4,
	},
	{
		ID:          "2",
		Description: "1.2D + 1.6L",
		Dead:        1.2,
		Live:        1.6,
	},
}

// Cases holds the unfactored components of the point load (N).
type Cases struct {
	Dead       float64
	Live       float64
	Roof       float64
	Wind       float64
	Earthquake float64
	Rain       float64
}

// IsZero reports whether no component was given.
func (c Cases) IsZero() bool {
	return c == Cases{}
}

// Factored returns the factored point load for this combination. Roof live
// and rain load are alternatives, so only the larger one is factored.
func (lc Combination) Factored(c Cases) float64 {
	return lc.Dead*c.Dead +
		lc.Live*c.Live +
		lc.RoofOrRain*math.Max(c.Roof, c.Rain) +
		lc.Wind*c.Wind +
		lc.Earthquake*c.Earthquake
}

// Governing finds the maximum factored load over all combinations.
// The first combination wins ties.
func Governing(c Cases, combinations []Combination) (float64, Combination) {
	var maxLoad float64
	var governing Combination

	for i, combo := range combinations {
		p := combo.Factored(c)
		if i == 0 || p > maxLoad {
			maxLoad = p
			governing = combo
		}
	}

	return maxLoad, governing
}
