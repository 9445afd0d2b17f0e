package fallback

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/soilsmart/soilsmart/internal/domain"
)

// unitNormalizer converts a matched value to the field's canonical unit.
// unit is the lower-cased unit capture, or "" when the pattern has none.
type unitNormalizer func(value float64, unit string) float64

type fieldPattern struct {
	re        *regexp.Regexp
	normalize unitNormalizer
}

type fieldSpec struct {
	name     string
	def      float64
	min, max float64
	patterns []fieldPattern
}

func asIs(v float64, _ string) float64 { return v }

// ppm converts kg/ha with the nutrient's factor and percentages at
// 1% = 10000 ppm. A missing unit means ppm.
func ppm(kgHaFactor float64) unitNormalizer {
	return func(v float64, unit string) float64 {
		switch unit {
		case "kg/ha":
			return v * kgHaFactor
		case "%":
			return v * 10000
		}
		return v
	}
}

func plain(normalize unitNormalizer, exprs ...string) []fieldPattern {
	out := make([]fieldPattern, len(exprs))
	for i, e := range exprs {
		out[i] = fieldPattern{re: regexp.MustCompile(`(?i)` + e), normalize: normalize}
	}
	return out
}

const (
	number   = `(\d+\.?\d*)`
	unitTail = `\s*(ppm|kg/ha|%)?`
)

// Field extraction table. Patterns are tried in order and the first match wins.
var (
	phSpec = fieldSpec{
		name: "phLevel", def: 7.0, min: 0, max: 14,
		patterns: plain(asIs,
			`ph[:\s]*`+number,
			`ph\s*=\s*`+number,
			`ph\s*value[:\s]*`+number,
			`ph\s*level[:\s]*`+number,
		),
	}
	organicMatterSpec = fieldSpec{
		name: "organicMatter", def: 3.0, min: 0, max: 15,
		patterns: plain(asIs,
			`organic\s*matter[:\s]*`+number+`%?`,
			`om[:\s]*`+number+`%?`,
			`organic\s*carbon[:\s]*`+number+`%?`,
			`oc[:\s]*`+number+`%?`,
		),
	}
	nitrogenSpec = fieldSpec{
		name: "nitrogen", def: 20, min: 0, max: 1000,
		patterns: plain(ppm(0.8),
			`nitrogen[:\s]*`+number+unitTail,
			`available\s*nitrogen[:\s]*`+number+unitTail,
			`\bn[:\s]*`+number+unitTail,
			`n2o5[:\s]*`+number+unitTail,
		),
	}
	phosphorusSpec = fieldSpec{
		name: "phosphorus", def: 15, min: 0, max: 500,
		patterns: plain(ppm(0.5),
			`phosphorus[:\s]*`+number+unitTail,
			`available\s*phosphorus[:\s]*`+number+unitTail,
			`\bp[:\s]*`+number+unitTail,
			`p2o5[:\s]*`+number+unitTail,
		),
	}
	potassiumSpec = fieldSpec{
		name: "potassium", def: 150, min: 0, max: 2000,
		patterns: plain(ppm(0.8),
			`potassium[:\s]*`+number+unitTail,
			`available\s*potassium[:\s]*`+number+unitTail,
			`\bk[:\s]*`+number+unitTail,
			`k2o[:\s]*`+number+unitTail,
		),
	}
)

func (f fieldSpec) extract(text string) float64 {
	for _, p := range f.patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			continue
		}
		unit := ""
		if len(m) > 2 {
			unit = strings.ToLower(m[2])
		}
		return clamp(p.normalize(v, unit), f.min, f.max)
	}
	return f.def
}

func (f fieldSpec) clamp(v float64) float64 {
	return clamp(v, f.min, f.max)
}

type keywordLabel[T ~string] struct {
	label    T
	keywords []string
}

// Keyword tables are scanned in declaration order; the first label with any
// keyword contained in the lower-cased text wins.
var (
	textureKeywords = []keywordLabel[domain.Texture]{
		{domain.TextureClay, []string{"clay", "heavy clay", "clayey", "clay loam"}},
		{domain.TextureSand, []string{"sand", "sandy", "sandy loam", "light sand"}},
		{domain.TextureSilt, []string{"silt", "silty", "silt loam", "silty clay"}},
		{domain.TextureMixed, []string{"mixed", "varied", "combination"}},
	}
	moistureKeywords = []keywordLabel[domain.Moisture]{
		{domain.MoistureLow, []string{"dry", "arid", "low moisture", "drought", "water deficit"}},
		{domain.MoistureHigh, []string{"wet", "waterlogged", "high moisture", "saturated", "flooded"}},
		{domain.MoistureMedium, []string{"moderate", "adequate", "normal moisture"}},
	}
)

func detect[T ~string](lower string, table []keywordLabel[T], def T) T {
	for _, entry := range table {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.label
			}
		}
	}
	return def
}

// Extract reads soil parameters out of free report text. It never fails:
// every field has a default and every number is clamped into its domain.
func Extract(text string) domain.SoilSample {
	text = asciiSpaces(text)
	lower := strings.ToLower(text)
	return NewSample(
		phSpec.extract(text),
		organicMatterSpec.extract(text),
		nitrogenSpec.extract(text),
		phosphorusSpec.extract(text),
		potassiumSpec.extract(text),
		detect(lower, textureKeywords, domain.TextureLoam),
		detect(lower, moistureKeywords, domain.MoistureMedium),
	)
}

// asciiSpaces maps Unicode spaces such as U+00A0 to ' ' so that \s in the
// patterns matches them.
func asciiSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII && unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
