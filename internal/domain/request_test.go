package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func completeInput() *SoilDataInput {
	return &SoilDataInput{
		SoilHealthScore: ptr(70),
		PHLevel:         ptr(6.5),
		OrganicMatter:   ptr(2.5),
		Nitrogen:        ptr(20),
		Phosphorus:      ptr(15),
		Potassium:       ptr(150),
	}
}

func TestUserContext_EffectiveBudget(t *testing.T) {
	assert.Equal(t, 50000.0, UserContext{}.EffectiveBudget(DefaultBudget))
	assert.Equal(t, 8000.0, UserContext{Budget: 8000}.EffectiveBudget(DefaultBudget))
	assert.Equal(t, 50000.0, UserContext{Budget: -1}.EffectiveBudget(DefaultBudget))
}

func TestSoilDataInput_MissingFields(t *testing.T) {
	in := completeInput()
	assert.Empty(t, in.MissingFields())

	in.PHLevel = nil
	in.Potassium = nil
	assert.Equal(t, []string{"phLevel", "potassium"}, in.MissingFields())

	// Zero is present, not missing.
	in = completeInput()
	in.Nitrogen = ptr(0)
	assert.Empty(t, in.MissingFields())
}

func TestRecommendRequest_Validate(t *testing.T) {
	var r RecommendRequest
	err := r.Validate()
	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.StatusCode)
	assert.Equal(t, "Soil data is required", appErr.Message)

	require.NoError(t, json.Unmarshal([]byte(`{"soilData":{"phLevel":6.5}}`), &r))
	err = r.Validate()
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, []string{"soilHealthScore", "organicMatter", "nitrogen", "phosphorus", "potassium"}, appErr.MissingFields)

	r = RecommendRequest{SoilData: completeInput()}
	require.NoError(t, r.Validate())
	assert.NotNil(t, r.UserContext)
}

func TestValidateReportText(t *testing.T) {
	assert.Error(t, ValidateReportText("   \n"))
	assert.Error(t, ValidateReportText(strings.Repeat("a", MaxTextLen+1)))
	assert.NoError(t, ValidateReportText("pH 6.5"))
}

func TestReportRequest_Validate(t *testing.T) {
	r := ReportRequest{SoilData: completeInput()}
	require.NoError(t, r.Validate())
	assert.Equal(t, ReportFormatHTML, r.Format)

	r = ReportRequest{SoilData: completeInput(), Format: "PDF"}
	require.NoError(t, r.Validate())
	assert.Equal(t, ReportFormatPDF, r.Format)

	r = ReportRequest{SoilData: completeInput(), Format: "docx"}
	assert.Error(t, r.Validate())
}

func TestIrrigationPlanRequest_Validate(t *testing.T) {
	r := IrrigationPlanRequest{}
	require.NoError(t, r.Validate())
	assert.Equal(t, 1.0, r.Area)

	r = IrrigationPlanRequest{Area: -2}
	assert.Error(t, r.Validate())
}

func TestHarvestPlanRequest_Validate(t *testing.T) {
	assert.Error(t, (&HarvestPlanRequest{ExpectedHarvestDate: "2024-03-01"}).Validate())
	assert.Error(t, (&HarvestPlanRequest{Crop: "Wheat"}).Validate())
	assert.NoError(t, (&HarvestPlanRequest{Crop: "Wheat", ExpectedHarvestDate: "2024-03-01"}).Validate())
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short...", Preview("short"))

	long := strings.Repeat("a", ExtractPreview-1) + "₹" + "tail"
	got := Preview(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("a", ExtractPreview-1)+"...", got)
}
