package fallback

import "github.com/soilsmart/soilsmart/internal/domain"

// Recommend returns amendment and fertilizer advice for the sample. Rules
// run top to bottom, each adding at most one line (texture rules add two),
// and the two closing lines are always present.
func Recommend(ph, om float64, texture domain.Texture, n, p, k float64) []string {
	var out []string

	switch {
	case ph < 5.5:
		out = append(out, "Apply agricultural lime (2-3 tons/ha) to increase pH to optimal range")
	case ph < 6.0:
		out = append(out, "Apply lime (1-2 tons/ha) to slightly increase pH")
	case ph > 8.5:
		out = append(out, "Apply sulfur (200-300 kg/ha) or organic matter to lower pH")
	case ph > 8.0:
		out = append(out, "Add organic compost to help buffer high pH")
	}

	switch {
	case om < 2.0:
		out = append(out, "Urgently increase organic matter with 5-7 tons/ha of compost or FYM")
	case om < 3.0:
		out = append(out, "Add 3-5 tons/ha of well-decomposed organic matter")
	case om >= 5.0:
		out = append(out, "Maintain excellent organic matter levels through regular additions")
	}

	switch {
	case n < 15:
		out = append(out, "Apply nitrogen fertilizer: Urea 100-150 kg/ha in split doses")
	case n > 40:
		out = append(out, "Nitrogen levels are high - reduce nitrogen fertilizer application")
	}

	switch {
	case p < 10:
		out = append(out, "Apply phosphorus: DAP 100-125 kg/ha at planting")
	case p > 30:
		out = append(out, "Phosphorus is adequate - avoid over-application")
	}

	switch {
	case k < 100:
		out = append(out, "Apply potassium: Muriate of Potash 80-100 kg/ha")
	case k > 300:
		out = append(out, "Potassium levels are high - monitor for nutrient imbalances")
	}

	switch texture {
	case domain.TextureClay:
		out = append(out,
			"Improve drainage through ridges/furrows and organic matter addition",
			"Avoid working soil when wet to prevent compaction",
		)
	case domain.TextureSand:
		out = append(out,
			"Add clay/compost to improve water and nutrient retention",
			"Use frequent, light irrigation and mulching",
		)
	}

	return append(out,
		"Conduct soil testing every 2-3 years for monitoring",
		"Consider cover crops during fallow periods",
	)
}
