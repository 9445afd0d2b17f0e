package fallback

import (
	"strings"

	"github.com/soilsmart/soilsmart/internal/domain"
)

var irrigationCadence = map[domain.Texture]string{
	domain.TextureSand: "Sandy soils need frequent, light irrigation (every 2-3 days, 15-20mm). ",
	domain.TextureClay: "Clay soils require deep, less frequent irrigation (every 7-10 days, 40-50mm). ",
}

const defaultCadence = "Loamy soils benefit from moderate irrigation (every 4-5 days, 25-30mm). "

type regionClause struct {
	keywords []string
	clause   string
}

// First matching region wins.
var regionClauses = []regionClause{
	{[]string{"rajasthan", "gujarat"}, "In arid regions, use drip irrigation and mulching to conserve water. "},
	{[]string{"kerala", "west bengal"}, "In high rainfall areas, focus on drainage during monsoon. "},
	{[]string{"punjab", "haryana"}, "In irrigated plains, practice alternate wetting and drying for rice. "},
	{[]string{"karnataka", "andhra"}, "Use tank irrigation and rainwater harvesting where possible. "},
}

// IrrigationAdvice composes the irrigation paragraph for a texture and an
// optional free-text location.
func IrrigationAdvice(texture domain.Texture, location string) string {
	var b strings.Builder
	b.WriteString("Monitor soil moisture at 15-20cm depth regularly. ")

	if c, ok := irrigationCadence[texture]; ok {
		b.WriteString(c)
	} else {
		b.WriteString(defaultCadence)
	}

	if loc := strings.ToLower(location); loc != "" {
	regions:
		for _, r := range regionClauses {
			for _, kw := range r.keywords {
				if strings.Contains(loc, kw) {
					b.WriteString(r.clause)
					break regions
				}
			}
		}
	}

	b.WriteString("Consider installing soil moisture sensors for precision irrigation.")
	return b.String()
}

// Improvements lists capital soil improvements for the sample. Costs are
// INR per hectare; uncosted items carry zero.
func Improvements(s domain.SoilSample) []domain.Improvement {
	var out []domain.Improvement
	add := func(desc string, low, high int) {
		out = append(out, domain.Improvement{Description: desc, CostLow: low, CostHigh: high})
	}

	switch {
	case s.PHLevel < 5.5:
		add("Apply agricultural lime: 2-3 tons/ha", 8000, 12000)
	case s.PHLevel > 8.5:
		add("Apply gypsum: 1-2 tons/ha", 6000, 10000)
	}

	switch {
	case s.OrganicMatter < 2.0:
		add("Urgent: Add 5-7 tons/ha of FYM or compost", 15000, 20000)
	case s.OrganicMatter < 3.0:
		add("Add 3-5 tons/ha of organic matter annually", 10000, 15000)
	}

	switch s.SoilTexture {
	case domain.TextureClay:
		add("Create drainage channels and raised beds", 5000, 8000)
		add("Add coarse organic matter for better aeration", 0, 0)
	case domain.TextureSand:
		add("Add clay/bentonite to improve water retention", 8000, 12000)
		add("Use mulching to reduce water loss", 0, 0)
	}

	if s.Nitrogen < 15 {
		add("Establish nitrogen-fixing cover crops (Legumes)", 0, 0)
	}
	if s.Phosphorus < 10 {
		add("Apply rock phosphate for long-term P availability", 0, 0)
	}

	add("Introduce beneficial microorganisms", 2000, 3000)
	add("Practice crop rotation to maintain soil health", 0, 0)

	if s.SoilTexture == domain.TextureClay {
		add("Install subsurface drainage system", 0, 0)
	} else {
		add("Implement drip irrigation for water efficiency", 0, 0)
	}
	return out
}

// RenderImprovements converts improvements to their display strings.
func RenderImprovements(items []domain.Improvement) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.String()
	}
	return out
}
