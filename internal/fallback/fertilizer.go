package fallback

import "github.com/soilsmart/soilsmart/internal/domain"

// minimumPlan is how many candidates are returned when nothing fits the budget.
const minimumPlan = 3

// fertilizerCandidates lists, in declaration order, the first matching band
// per nutrient followed by the unconditional items.
func fertilizerCandidates(n, p, k float64) []domain.FertilizerRecommendation {
	levels := map[string]float64{"nitrogen": n, "phosphorus": p, "potassium": k}

	var out []domain.FertilizerRecommendation
	for _, nb := range catalog.Fertilizers.Nutrients {
		v := levels[nb.Nutrient]
		for _, b := range nb.Bands {
			if v < b.Below {
				out = append(out, b.Item)
				break
			}
		}
	}
	return append(out, catalog.Fertilizers.Always...)
}

// AllocateFertilizers greedily accepts candidates in order while the running
// total stays within budget. Rejected items are skipped, not deferred. If
// nothing fits, the first three candidates are returned regardless of cost.
// A budget <= 0 means domain.DefaultBudget.
func AllocateFertilizers(n, p, k, budget float64) []domain.FertilizerRecommendation {
	if budget <= 0 {
		budget = domain.DefaultBudget
	}
	candidates := fertilizerCandidates(n, p, k)

	var (
		accepted []domain.FertilizerRecommendation
		total    float64
	)
	for _, f := range candidates {
		if total+float64(f.Cost) <= budget {
			accepted = append(accepted, f)
			total += float64(f.Cost)
		}
	}
	if len(accepted) > 0 {
		return accepted
	}
	if len(candidates) > minimumPlan {
		candidates = candidates[:minimumPlan]
	}
	return candidates
}
