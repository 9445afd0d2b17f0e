package domain

import "strings"

// Texture is the soil texture class.
type Texture string

const (
	TextureClay  Texture = "Clay"
	TextureSand  Texture = "Sand"
	TextureSilt  Texture = "Silt"
	TextureLoam  Texture = "Loam"
	TextureMixed Texture = "Mixed"
)

var textures = []Texture{TextureClay, TextureSand, TextureSilt, TextureLoam, TextureMixed}

// ParseTexture matches s case-insensitively against the known textures.
func ParseTexture(s string) (Texture, bool) {
	s = strings.TrimSpace(s)
	for _, t := range textures {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

// Moisture is the qualitative soil moisture level.
type Moisture string

const (
	MoistureLow    Moisture = "Low"
	MoistureMedium Moisture = "Medium"
	MoistureHigh   Moisture = "High"
)

var moistures = []Moisture{MoistureLow, MoistureMedium, MoistureHigh}

func ParseMoisture(s string) (Moisture, bool) {
	s = strings.TrimSpace(s)
	for _, m := range moistures {
		if strings.EqualFold(s, string(m)) {
			return m, true
		}
	}
	return "", false
}

// SoilSample is the parsed soil report. Field names are shared with the
// frontend and must not change.
type SoilSample struct {
	SoilHealthScore int      `json:"soilHealthScore"`
	PHLevel         float64  `json:"phLevel"`
	OrganicMatter   float64  `json:"organicMatter"`
	Nitrogen        float64  `json:"nitrogen"`
	Phosphorus      float64  `json:"phosphorus"`
	Potassium       float64  `json:"potassium"`
	SoilTexture     Texture  `json:"soilTexture"`
	MoistureLevel   Moisture `json:"moistureLevel"`
	Recommendations []string `json:"recommendations"`
}

// CropCandidate is a catalog crop, optionally ranked for a sample.
type CropCandidate struct {
	CropName         string    `json:"cropName" yaml:"cropName"`
	BaseScore        int       `json:"baseScore,omitempty" yaml:"baseScore"`
	SuitabilityScore int       `json:"suitabilityScore"`
	ExpectedYield    string    `json:"expectedYield" yaml:"expectedYield"`
	GrowthPeriod     string    `json:"growthPeriod" yaml:"growthPeriod"`
	PHRange          []float64 `json:"phRange,omitempty" yaml:"phRange"`
	Seasons          []string  `json:"seasons,omitempty" yaml:"seasons"`
}

// FertilizerRecommendation is one line item of a fertilizer plan. Cost is INR per hectare.
type FertilizerRecommendation struct {
	Name        string `json:"name" yaml:"name"`
	Quantity    string `json:"quantity" yaml:"quantity"`
	Cost        int    `json:"cost" yaml:"cost"`
	Application string `json:"application" yaml:"application"`
}

// Improvement is a capital soil improvement with an optional per-hectare cost range.
type Improvement struct {
	Description string
	CostLow     int
	CostHigh    int
}

// Costed reports whether the improvement carries a cost range.
func (i Improvement) Costed() bool {
	return i.CostLow > 0
}

// String renders the improvement the way it is shown to farmers,
// e.g. "Use mulching (₹2,000-3,000/ha)".
func (i Improvement) String() string {
	if !i.Costed() {
		return i.Description
	}
	return i.Description + " (" + FormatINR(i.CostLow) + "-" + formatGrouped(i.CostHigh) + "/ha)"
}

// RecommendationBundle is the full farming advice for one sample and context.
type RecommendationBundle struct {
	CropSuggestions     []CropCandidate            `json:"cropSuggestions"`
	Fertilizers         []FertilizerRecommendation `json:"fertilizers"`
	SoilImprovements    []string                   `json:"soilImprovements"`
	IrrigationAdvice    string                     `json:"irrigationAdvice"`
	TotalBudgetEstimate int                        `json:"totalBudgetEstimate"`
}

// Source records which engine produced a result.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)
