package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soilsmart/soilsmart/internal/domain"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Here you go:\n{\"a\":{\"b\":2}}\nThanks!", `{"a":{"b":2}}`},
		{"no object", "sorry", "sorry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.in))
		})
	}
}

func TestDecodeSoilSample(t *testing.T) {
	raw := "```json\n" + `{"soilHealthScore": 71.6, "phLevel": 6.2, "organicMatter": 3.5, "nitrogen": 25,
"phosphorus": 18, "potassium": 180, "soilTexture": "Loam", "moistureLevel": "Medium",
"recommendations": ["Maintain organic matter"]}` + "\n```"

	s, err := decodeSoilSample(raw)
	require.NoError(t, err)
	assert.Equal(t, 72, s.SoilHealthScore)
	assert.Equal(t, 6.2, s.PHLevel)
	assert.Equal(t, 180.0, s.Potassium)
	assert.Equal(t, domain.TextureLoam, s.SoilTexture)
	assert.Equal(t, []string{"Maintain organic matter"}, s.Recommendations)
}

func TestDecodeSoilSample_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{"not json", "I cannot read this report", "raw: I cannot read"},
		{"missing fields", `{"phLevel": 6.5, "nitrogen": 20}`, "missing soilHealthScore, organicMatter"},
		{"zero ph", `{"soilHealthScore": 50, "phLevel": 0, "organicMatter": 2}`, "missing phLevel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeSoilSample(tt.raw)
			require.ErrorIs(t, err, ErrInvalidResponse)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDecodeRecommendations(t *testing.T) {
	raw := `{
  "cropSuggestions": [{"cropName": "Wheat", "suitabilityScore": 88.4, "expectedYield": "4 t/ha", "growthPeriod": "120 days"}],
  "fertilizers": [
    {"name": "Urea", "quantity": "100 kg/ha", "cost": 3000, "application": "split"},
    {"name": "DAP", "quantity": "50 kg/ha", "cost": 250000, "application": "basal"},
    {"name": "Zinc", "quantity": "25 kg/ha", "cost": 40, "application": "once"}
  ],
  "irrigationAdvice": "Irrigate weekly",
  "totalBudgetEstimate": 12000.4
}`
	b, err := decodeRecommendations(raw)
	require.NoError(t, err)

	require.Len(t, b.CropSuggestions, 1)
	assert.Equal(t, 88, b.CropSuggestions[0].SuitabilityScore)
	require.Len(t, b.Fertilizers, 3)
	assert.Equal(t, 3000, b.Fertilizers[0].Cost)
	assert.Equal(t, 25000, b.Fertilizers[1].Cost)
	assert.Equal(t, 2000, b.Fertilizers[2].Cost)
	assert.Equal(t, 12000, b.TotalBudgetEstimate)
	assert.NotNil(t, b.SoilImprovements)
}

func TestDecodeRecommendations_Invalid(t *testing.T) {
	_, err := decodeRecommendations(`{"cropSuggestions": [], "irrigationAdvice": "x"}`)
	require.ErrorIs(t, err, ErrInvalidResponse)
	assert.Contains(t, err.Error(), "missing fertilizers, totalBudgetEstimate")
}

func TestRepairCost(t *testing.T) {
	assert.Equal(t, 3500, repairCost(3500))
	assert.Equal(t, 500, repairCost(500))
	assert.Equal(t, 50000, repairCost(50000))
	assert.Equal(t, 6000, repairCost(60000))
	assert.Equal(t, 24950, repairCost(499))
}
