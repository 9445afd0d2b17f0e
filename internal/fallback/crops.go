package fallback

import (
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/soilsmart/soilsmart/internal/domain"
)

// MaxCropSuggestions caps the ranked list.
const MaxCropSuggestions = 4

// candidatesFor filters the catalog by preference category. A preference
// that is not in the table leaves the catalog unfiltered; a known category
// whose names match no catalog crop yields an empty slice.
func candidatesFor(preference string) []domain.CropCandidate {
	crops := Catalog()
	preference = strings.ToLower(strings.TrimSpace(preference))
	if preference == "" {
		return crops
	}
	names, ok := catalog.Preferences[preference]
	if !ok {
		return crops
	}
	out := crops[:0]
	for _, c := range crops {
		if slices.ContainsFunc(names, func(n string) bool { return strings.Contains(c.CropName, n) }) {
			out = append(out, c)
		}
	}
	return out
}

func suitability(c domain.CropCandidate, s domain.SoilSample) int {
	score := float64(c.BaseScore)

	lo, hi := c.PHRange[0], c.PHRange[1]
	switch {
	case s.PHLevel >= lo && s.PHLevel <= hi:
		score += 10
	case math.Abs(s.PHLevel-(lo+hi)/2) > 1.0:
		score -= 15
	}

	switch {
	case s.OrganicMatter >= 3.0:
		score += 5
	case s.OrganicMatter < 2.0:
		score -= 8
	}

	if slices.Contains(catalog.TexturePreferences[c.CropName], string(s.SoilTexture)) {
		score += 8
	}

	switch {
	case s.Nitrogen >= 20 && s.Phosphorus >= 15 && s.Potassium >= 150:
		score += 7
	case s.Nitrogen < 10 || s.Phosphorus < 8 || s.Potassium < 80:
		score -= 10
	}

	switch {
	case s.SoilHealthScore >= 80:
		score += 5
	case s.SoilHealthScore < 60:
		score -= 8
	}

	return clampScore(score)
}

// RankCrops scores the (optionally preference-filtered) catalog against the
// sample and returns the best MaxCropSuggestions, highest first. Ties keep
// catalog order. location is accepted for parity with the LLM path and does
// not affect ranking.
func RankCrops(s domain.SoilSample, preference, location string) []domain.CropCandidate {
	crops := candidatesFor(preference)
	for i := range crops {
		crops[i].SuitabilityScore = suitability(crops[i], s)
	}
	sort.SliceStable(crops, func(i, j int) bool {
		return crops[i].SuitabilityScore > crops[j].SuitabilityScore
	})
	if len(crops) > MaxCropSuggestions {
		crops = crops[:MaxCropSuggestions]
	}
	return crops
}
