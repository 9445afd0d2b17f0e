package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soilsmart/soilsmart/internal/domain"
)

func sampleReport() Report {
	return Report{
		Sample: domain.SoilSample{
			SoilHealthScore: 95,
			PHLevel:         6.2,
			OrganicMatter:   3.5,
			Nitrogen:        25,
			Phosphorus:      18,
			Potassium:       180,
			SoilTexture:     domain.TextureLoam,
			MoistureLevel:   domain.MoistureMedium,
			Recommendations: []string{"Soil pH is optimal for most crops"},
		},
		Bundle: domain.RecommendationBundle{
			CropSuggestions: []domain.CropCandidate{
				{CropName: "Rice | Paddy", SuitabilityScore: 92, ExpectedYield: "4-6 tons/hectare", GrowthPeriod: "120-150 days"},
			},
			Fertilizers: []domain.FertilizerRecommendation{
				{Name: "Urea (46-0-0)", Quantity: "100 kg/hectare", Cost: 3500, Application: "Split application"},
			},
			SoilImprovements:    []string{"Use mulching (₹2,000-3,000/ha)"},
			IrrigationAdvice:    "Drip irrigation recommended.",
			TotalBudgetEstimate: 150000,
		},
		Context:     domain.UserContext{Location: "Punjab", Budget: 50000},
		GeneratedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestMarkdown(t *testing.T) {
	md := sampleReport().Markdown()

	assert.True(t, strings.HasPrefix(md, "# SoilSmart Soil Analysis Report\n"))
	assert.Contains(t, md, "**Location:** Punjab")
	assert.Contains(t, md, "**Budget:** ₹50,000")
	assert.Contains(t, md, "**Generated:** 1 March 2024")
	assert.Contains(t, md, "| Soil health score | 95/100 |")
	assert.Contains(t, md, "| pH | 6.2 |")
	assert.Contains(t, md, `| Rice \| Paddy | 92% |`)
	assert.Contains(t, md, "| Urea (46-0-0) | 100 kg/hectare | ₹3,500 | Split application |")
	assert.Contains(t, md, "- Use mulching (₹2,000-3,000/ha)")
	assert.Contains(t, md, "**Estimated total:** ₹1,50,000 per hectare")
	assert.NotContains(t, md, "Crop preference")
}

func TestMarkdown_EmptyBundle(t *testing.T) {
	r := sampleReport()
	r.Bundle = domain.RecommendationBundle{}
	md := r.Markdown()

	assert.NotContains(t, md, "## Recommended Crops")
	assert.NotContains(t, md, "## Fertilizer Plan")
	assert.Contains(t, md, "**Estimated total:** ₹0 per hectare")
}

func TestHTML(t *testing.T) {
	doc, err := sampleReport().HTML()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "<!doctype html>"))
	assert.Contains(t, doc, "<title>SoilSmart Soil Analysis Report</title>")
	assert.Contains(t, doc, "<table>")
	assert.Contains(t, doc, "<td>Soil health score</td>")
	assert.Contains(t, doc, "<td>Rice | Paddy</td>")
	assert.Contains(t, doc, "<strong>Location:</strong> Punjab")
	assert.Contains(t, doc, "border-collapse")
}

func TestHTML_DropsRawHTML(t *testing.T) {
	r := sampleReport()
	r.Context.Location = `<script>alert("x")</script>`
	doc, err := r.HTML()
	require.NoError(t, err)
	assert.NotContains(t, doc, "<script>")
}

func TestReport_Page(t *testing.T) {
	r := sampleReport()
	r.Context.Location = "Nashik,\n Maharashtra"
	r.GeneratedAt = time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)

	pg := r.Page()
	assert.Equal(t, "SoilSmart soil report, Nashik, Maharashtra, 4 Mar 2026", pg.Footer)
	assert.Equal(t, A4.Width, pg.Width)
	assert.Equal(t, A4.Margin, pg.Margin)

	assert.Equal(t, "SoilSmart soil report", Report{}.Page().Footer)
}

func TestPrintParams(t *testing.T) {
	pg := Page{Width: 8.5, Height: 11, Margin: 0.4, Footer: `Farm <b>&</b> Co`}
	p := printParams(pg)

	assert.Equal(t, 8.5, p.PaperWidth)
	assert.Equal(t, 11.0, p.PaperHeight)
	assert.Equal(t, 0.4, p.MarginTop)
	assert.InDelta(t, 0.65, p.MarginBottom, 1e-9)
	assert.True(t, p.DisplayHeaderFooter)
	assert.Contains(t, p.FooterTemplate, "Farm &lt;b&gt;&amp;&lt;/b&gt; Co")
	assert.Contains(t, p.FooterTemplate, `class="pageNumber"`)
}

func TestPDFRenderer_Unavailable(t *testing.T) {
	r := &PDFRenderer{}
	assert.False(t, r.Available())

	_, err := r.Render(context.Background(), "<html></html>", A4)
	assert.True(t, errors.Is(err, ErrChromeUnavailable))
}

func TestNewPDFRenderer_ExplicitPath(t *testing.T) {
	r := NewPDFRenderer("/opt/chrome/chrome", 0)
	assert.True(t, r.Available())
	assert.Equal(t, 30*time.Second, r.timeout)
}
