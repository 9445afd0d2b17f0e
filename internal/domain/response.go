package domain

import "time"

// ParseResponse is the JSON response for POST /api/parse-soil.
type ParseResponse struct {
	Success       bool       `json:"success"`
	Data          SoilSample `json:"data"`
	ExtractedText string     `json:"extractedText"`
	Source        Source     `json:"source"`
}

// RecommendResponse is the JSON response for POST /api/recommend.
type RecommendResponse struct {
	Success bool                 `json:"success"`
	Data    RecommendationBundle `json:"data"`
	Source  Source               `json:"source"`
}

// AnalyzeResponse is the JSON response for POST /api/analyze.
type AnalyzeResponse struct {
	Success         bool                 `json:"success"`
	SoilData        SoilSample           `json:"soilData"`
	Recommendations RecommendationBundle `json:"recommendations"`
	ExtractedText   string               `json:"extractedText"`
	Sources         AnalyzeSources       `json:"sources"`
}

type AnalyzeSources struct {
	SoilData        Source `json:"soilData"`
	Recommendations Source `json:"recommendations"`
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	LLM       string    `json:"llm"`
}

// ErrorResponse is used for non-200 error responses.
type ErrorResponse struct {
	Error         string   `json:"error"`
	Code          string   `json:"code,omitempty"`
	Message       string   `json:"message,omitempty"`
	MissingFields []string `json:"missingFields,omitempty"`
}

// Preview returns the first ExtractPreview bytes of text followed by "...",
// cut on a rune boundary.
func Preview(text string) string {
	if len(text) <= ExtractPreview {
		return text + "..."
	}
	cut := ExtractPreview
	for cut > 0 && !runeStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func runeStart(b byte) bool {
	return b&0xC0 != 0x80
}
