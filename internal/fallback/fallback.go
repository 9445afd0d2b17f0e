// Package fallback is the deterministic soil engine used when the LLM is
// unavailable or returns something unusable. Every function is pure over
// its arguments and the embedded catalog, and none of them fail: missing
// input degrades to documented defaults.
package fallback

import "github.com/soilsmart/soilsmart/internal/domain"

// Parse is the fallback for soil report parsing.
func Parse(text string) domain.SoilSample {
	return Extract(text)
}

// Recommendations builds the full advice bundle for a sample. defaultBudget
// replaces a missing or non-positive budget in uctx.
func Recommendations(s domain.SoilSample, uctx domain.UserContext, defaultBudget float64) domain.RecommendationBundle {
	fertilizers := AllocateFertilizers(s.Nitrogen, s.Phosphorus, s.Potassium, uctx.EffectiveBudget(defaultBudget))
	improvements := Improvements(s)

	return domain.RecommendationBundle{
		CropSuggestions:     RankCrops(s, uctx.CropPreference, uctx.Location),
		Fertilizers:         fertilizers,
		SoilImprovements:    RenderImprovements(improvements),
		IrrigationAdvice:    IrrigationAdvice(s.SoilTexture, uctx.Location),
		TotalBudgetEstimate: EstimateTotal(fertilizers, improvements),
	}
}
