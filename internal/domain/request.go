package domain

import (
	"fmt"
	"strings"
)

const (
	DefaultBudget  = 50000
	MaxTextLen     = 200000
	ExtractPreview = 500
)

// ParseRequest is the JSON body form of POST /api/parse-soil.
type ParseRequest struct {
	Text string `json:"text"`
}

// UserContext is the farm context supplied with each request. It is never stored.
type UserContext struct {
	Location       string `json:"location,omitempty"`
	Budget         Amount `json:"budget,omitempty"`
	CropPreference string `json:"cropPreference,omitempty"`
}

// EffectiveBudget returns the budget, falling back to the provided default
// when the caller left it empty, zero or negative.
func (u UserContext) EffectiveBudget(defaultBudget float64) float64 {
	if u.Budget <= 0 {
		return defaultBudget
	}
	return float64(u.Budget)
}

// SoilDataInput is a client-supplied soil sample. Pointers distinguish
// absent fields from zero values.
type SoilDataInput struct {
	SoilHealthScore *float64 `json:"soilHealthScore"`
	PHLevel         *float64 `json:"phLevel"`
	OrganicMatter   *float64 `json:"organicMatter"`
	Nitrogen        *float64 `json:"nitrogen"`
	Phosphorus      *float64 `json:"phosphorus"`
	Potassium       *float64 `json:"potassium"`
	SoilTexture     string   `json:"soilTexture"`
	MoistureLevel   string   `json:"moistureLevel"`
}

// MissingFields lists the required numeric fields that are absent, in the
// order the API documents them.
func (s *SoilDataInput) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"soilHealthScore", s.SoilHealthScore},
		{"phLevel", s.PHLevel},
		{"organicMatter", s.OrganicMatter},
		{"nitrogen", s.Nitrogen},
		{"phosphorus", s.Phosphorus},
		{"potassium", s.Potassium},
	} {
		if f.v == nil {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// RecommendRequest is the JSON body for POST /api/recommend.
type RecommendRequest struct {
	SoilData    *SoilDataInput `json:"soilData"`
	UserContext *UserContext   `json:"userContext,omitempty"`
}

// Validate checks that soil data is present and complete.
func (r *RecommendRequest) Validate() error {
	if r.SoilData == nil {
		return NewValidationError("Soil data is required")
	}
	if missing := r.SoilData.MissingFields(); len(missing) > 0 {
		return NewMissingFieldsError(missing)
	}
	if r.UserContext == nil {
		r.UserContext = &UserContext{}
	}
	return nil
}

// AnalyzeRequest is the JSON body form of POST /api/analyze.
type AnalyzeRequest struct {
	Text string `json:"text"`
	UserContext
}

// ValidateReportText rejects empty or oversized report text.
func ValidateReportText(text string) error {
	if strings.TrimSpace(text) == "" {
		return NewValidationError("No text could be extracted from the file")
	}
	if len(text) > MaxTextLen {
		return NewValidationError(fmt.Sprintf("report text must be <= %d bytes", MaxTextLen))
	}
	return nil
}

// ReportRequest is the JSON body for POST /api/report.
type ReportRequest struct {
	SoilData        *SoilDataInput        `json:"soilData"`
	Recommendations *RecommendationBundle `json:"recommendations,omitempty"`
	UserContext     *UserContext          `json:"userContext,omitempty"`
	Format          string                `json:"format"`
}

const (
	ReportFormatHTML = "html"
	ReportFormatPDF  = "pdf"
)

func (r *ReportRequest) Validate() error {
	if r.SoilData == nil {
		return NewValidationError("Soil data is required")
	}
	if missing := r.SoilData.MissingFields(); len(missing) > 0 {
		return NewMissingFieldsError(missing)
	}
	switch strings.ToLower(r.Format) {
	case "":
		r.Format = ReportFormatHTML
	case ReportFormatHTML, ReportFormatPDF:
		r.Format = strings.ToLower(r.Format)
	default:
		return NewValidationError(fmt.Sprintf("format must be %q or %q", ReportFormatHTML, ReportFormatPDF))
	}
	if r.UserContext == nil {
		r.UserContext = &UserContext{}
	}
	return nil
}

// IrrigationPlanRequest is the JSON body for POST /api/irrigation-plan.
type IrrigationPlanRequest struct {
	Method string  `json:"method"`
	Crop   string  `json:"crop"`
	Soil   string  `json:"soil"`
	Season string  `json:"season"`
	Area   float64 `json:"area"`
}

func (r *IrrigationPlanRequest) Validate() error {
	if r.Area < 0 {
		return NewValidationError("area must be >= 0")
	}
	if r.Area == 0 {
		r.Area = 1
	}
	return nil
}

// HarvestPlanRequest is the JSON body for POST /api/harvest-plan.
type HarvestPlanRequest struct {
	Crop string `json:"cropName"`
	// ExpectedHarvestDate is an ISO date (2006-01-02).
	ExpectedHarvestDate string `json:"expectedHarvestDate"`
	Location            string `json:"location,omitempty"`
}

func (r *HarvestPlanRequest) Validate() error {
	if strings.TrimSpace(r.Crop) == "" {
		return NewValidationError("cropName is required")
	}
	if strings.TrimSpace(r.ExpectedHarvestDate) == "" {
		return NewValidationError("expectedHarvestDate is required")
	}
	return nil
}
