package fallback

import (
	"math"

	"github.com/soilsmart/soilsmart/internal/domain"
)

const (
	// uncostedImprovement is charged for improvements without a cost range.
	uncostedImprovement = 3000
	laborRate           = 0.2
)

// EstimateTotal sums fertilizer costs and the low end of each improvement's
// cost range, then adds labor and miscellaneous at 20% of materials.
func EstimateTotal(fertilizers []domain.FertilizerRecommendation, improvements []domain.Improvement) int {
	materials := 0
	for _, f := range fertilizers {
		materials += f.Cost
	}
	for _, imp := range improvements {
		if imp.Costed() {
			materials += imp.CostLow
		} else {
			materials += uncostedImprovement
		}
	}
	return int(math.Round(float64(materials) * (1 + laborRate)))
}
