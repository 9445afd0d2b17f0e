package fallback

import (
	"math"

	"github.com/soilsmart/soilsmart/internal/domain"
)

type rangeBand struct {
	lo, hi float64
	points int
}

type floorBand struct {
	atLeast float64
	points  int
}

// Sub-score bands, best first. A value falling through every band earns the
// trailing floor score.
var (
	phBands = []rangeBand{
		{6.0, 7.5, 25},
		{5.5, 8.0, 22},
		{5.0, 8.5, 18},
		{4.5, 9.0, 12},
	}
	organicMatterBands = []floorBand{{5.0, 25}, {3.5, 22}, {2.5, 18}, {1.5, 12}}
	nitrogenBands      = []floorBand{{25, 15}, {20, 13}, {15, 10}, {10, 7}}
	phosphorusBands    = []floorBand{{20, 15}, {15, 13}, {10, 10}, {5, 7}}
	potassiumBands     = []floorBand{{200, 20}, {150, 17}, {100, 13}, {50, 8}}

	textureModifier = map[domain.Texture]int{
		domain.TextureLoam:  3,
		domain.TextureSilt:  1,
		domain.TextureMixed: 0,
		domain.TextureClay:  -2,
		domain.TextureSand:  -3,
	}
)

const (
	phFloor       = 5
	organicFloor  = 5
	nutrientFloor = 3
)

func rangeScore(v float64, bands []rangeBand, floor int) int {
	for _, b := range bands {
		if v >= b.lo && v <= b.hi {
			return b.points
		}
	}
	return floor
}

func floorScore(v float64, bands []floorBand, floor int) int {
	for _, b := range bands {
		if v >= b.atLeast {
			return b.points
		}
	}
	return floor
}

// Score is the 0-100 soil health score: pH (25) + organic matter (25) +
// N (15) + P (15) + K (20), plus a texture modifier, clamped.
func Score(ph, om, n, p, k float64, texture domain.Texture) int {
	score := rangeScore(ph, phBands, phFloor) +
		floorScore(om, organicMatterBands, organicFloor) +
		floorScore(n, nitrogenBands, nutrientFloor) +
		floorScore(p, phosphorusBands, nutrientFloor) +
		floorScore(k, potassiumBands, nutrientFloor) +
		textureModifier[texture]
	return clampScore(float64(score))
}

func clampScore(v float64) int {
	return int(math.Round(clamp(v, 0, 100)))
}
