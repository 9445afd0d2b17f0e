package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/soilsmart/soilsmart/internal/domain"
)

// ErrInvalidResponse marks model output that is not usable JSON or lacks
// required fields.
var ErrInvalidResponse = errors.New("invalid llm response")

// Fertilizer costs outside this band are treated as unit mistakes.
const (
	maxFertilizerCost = 50000
	minFertilizerCost = 500
)

var jsonObjectRe = regexp.MustCompile(`\{[\s\S]*\}`)

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// cleanJSON strips fences and keeps the outermost {...} object.
func cleanJSON(raw string) string {
	s := stripCodeFences(raw)
	if m := jsonObjectRe.FindString(s); m != "" {
		return m
	}
	return s
}

type soilPayload struct {
	SoilHealthScore float64  `json:"soilHealthScore"`
	PHLevel         float64  `json:"phLevel"`
	OrganicMatter   float64  `json:"organicMatter"`
	Nitrogen        float64  `json:"nitrogen"`
	Phosphorus      float64  `json:"phosphorus"`
	Potassium       float64  `json:"potassium"`
	SoilTexture     string   `json:"soilTexture"`
	MoistureLevel   string   `json:"moistureLevel"`
	Recommendations []string `json:"recommendations"`
}

func decodeSoilSample(raw string) (*domain.SoilSample, error) {
	var p soilPayload
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &p); err != nil {
		return nil, fmt.Errorf("parse soil response: %w: %v (raw: %s)", ErrInvalidResponse, err, truncate(raw, 200))
	}

	var missing []string
	if p.SoilHealthScore == 0 {
		missing = append(missing, "soilHealthScore")
	}
	if p.PHLevel == 0 {
		missing = append(missing, "phLevel")
	}
	if p.OrganicMatter == 0 {
		missing = append(missing, "organicMatter")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("parse soil response: %w: missing %s", ErrInvalidResponse, strings.Join(missing, ", "))
	}

	return &domain.SoilSample{
		SoilHealthScore: int(math.Round(p.SoilHealthScore)),
		PHLevel:         p.PHLevel,
		OrganicMatter:   p.OrganicMatter,
		Nitrogen:        p.Nitrogen,
		Phosphorus:      p.Phosphorus,
		Potassium:       p.Potassium,
		SoilTexture:     domain.Texture(p.SoilTexture),
		MoistureLevel:   domain.Moisture(p.MoistureLevel),
		Recommendations: p.Recommendations,
	}, nil
}

type cropPayload struct {
	CropName         string  `json:"cropName"`
	SuitabilityScore float64 `json:"suitabilityScore"`
	ExpectedYield    string  `json:"expectedYield"`
	GrowthPeriod     string  `json:"growthPeriod"`
}

type fertilizerPayload struct {
	Name        string  `json:"name"`
	Quantity    string  `json:"quantity"`
	Cost        float64 `json:"cost"`
	Application string  `json:"application"`
}

type recommendationPayload struct {
	CropSuggestions     []cropPayload       `json:"cropSuggestions"`
	Fertilizers         []fertilizerPayload `json:"fertilizers"`
	SoilImprovements    []string            `json:"soilImprovements"`
	IrrigationAdvice    string              `json:"irrigationAdvice"`
	TotalBudgetEstimate float64             `json:"totalBudgetEstimate"`
}

func decodeRecommendations(raw string) (*domain.RecommendationBundle, error) {
	var p recommendationPayload
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &p); err != nil {
		return nil, fmt.Errorf("parse recommendation response: %w: %v (raw: %s)", ErrInvalidResponse, err, truncate(raw, 200))
	}

	var missing []string
	if p.CropSuggestions == nil {
		missing = append(missing, "cropSuggestions")
	}
	if p.Fertilizers == nil {
		missing = append(missing, "fertilizers")
	}
	if p.TotalBudgetEstimate == 0 {
		missing = append(missing, "totalBudgetEstimate")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("parse recommendation response: %w: missing %s", ErrInvalidResponse, strings.Join(missing, ", "))
	}

	b := &domain.RecommendationBundle{
		CropSuggestions:     make([]domain.CropCandidate, 0, len(p.CropSuggestions)),
		Fertilizers:         make([]domain.FertilizerRecommendation, 0, len(p.Fertilizers)),
		SoilImprovements:    p.SoilImprovements,
		IrrigationAdvice:    p.IrrigationAdvice,
		TotalBudgetEstimate: int(math.Round(p.TotalBudgetEstimate)),
	}
	if b.SoilImprovements == nil {
		b.SoilImprovements = []string{}
	}
	for _, c := range p.CropSuggestions {
		b.CropSuggestions = append(b.CropSuggestions, domain.CropCandidate{
			CropName:         c.CropName,
			SuitabilityScore: int(math.Round(c.SuitabilityScore)),
			ExpectedYield:    c.ExpectedYield,
			GrowthPeriod:     c.GrowthPeriod,
		})
	}
	for _, f := range p.Fertilizers {
		b.Fertilizers = append(b.Fertilizers, domain.FertilizerRecommendation{
			Name:        f.Name,
			Quantity:    f.Quantity,
			Cost:        repairCost(f.Cost),
			Application: f.Application,
		})
	}
	return b, nil
}

// repairCost rescales a fertilizer cost that falls outside the plausible
// per-hectare band.
func repairCost(cost float64) int {
	if cost > maxFertilizerCost {
		cost = math.Round(cost / 10)
	}
	if cost < minFertilizerCost {
		cost *= 50
	}
	return int(math.Round(cost))
}
