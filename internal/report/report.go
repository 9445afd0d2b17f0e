// Package report renders soil analysis reports as HTML and PDF.
package report

import (
	_ "embed"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/soilsmart/soilsmart/internal/domain"
)

//go:embed style.css
var styleCSS string

const title = "SoilSmart Soil Analysis Report"

// Report is everything shown in a rendered report.
type Report struct {
	Sample      domain.SoilSample
	Bundle      domain.RecommendationBundle
	Context     domain.UserContext
	GeneratedAt time.Time
}

// Markdown renders the report body as GitHub-flavoured markdown.
func (r Report) Markdown() string {
	var b strings.Builder
	s := r.Sample

	fmt.Fprintf(&b, "# %s\n\n", title)
	if r.Context.Location != "" {
		fmt.Fprintf(&b, "**Location:** %s  \n", inline(r.Context.Location))
	}
	if r.Context.Budget > 0 {
		fmt.Fprintf(&b, "**Budget:** %s  \n", domain.FormatINR(int(r.Context.Budget)))
	}
	if r.Context.CropPreference != "" {
		fmt.Fprintf(&b, "**Crop preference:** %s  \n", inline(r.Context.CropPreference))
	}
	fmt.Fprintf(&b, "**Generated:** %s\n\n", r.GeneratedAt.Format("2 January 2006"))

	b.WriteString("## Soil Health\n\n")
	b.WriteString("| Parameter | Value |\n|---|---|\n")
	rows := [][2]string{
		{"Soil health score", strconv.Itoa(s.SoilHealthScore) + "/100"},
		{"pH", num(s.PHLevel)},
		{"Organic matter", num(s.OrganicMatter) + "%"},
		{"Nitrogen", num(s.Nitrogen) + " ppm"},
		{"Phosphorus", num(s.Phosphorus) + " ppm"},
		{"Potassium", num(s.Potassium) + " ppm"},
		{"Texture", string(s.SoilTexture)},
		{"Moisture", string(s.MoistureLevel)},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", row[0], cell(row[1]))
	}
	if len(s.Recommendations) > 0 {
		b.WriteString("\n### Observations\n\n")
		writeList(&b, s.Recommendations)
	}

	bundle := r.Bundle
	if len(bundle.CropSuggestions) > 0 {
		b.WriteString("\n## Recommended Crops\n\n")
		b.WriteString("| Crop | Suitability | Expected yield | Growth period |\n|---|---|---|---|\n")
		for _, c := range bundle.CropSuggestions {
			fmt.Fprintf(&b, "| %s | %d%% | %s | %s |\n", cell(c.CropName), c.SuitabilityScore, cell(c.ExpectedYield), cell(c.GrowthPeriod))
		}
	}

	if len(bundle.Fertilizers) > 0 {
		b.WriteString("\n## Fertilizer Plan\n\n")
		b.WriteString("| Fertilizer | Quantity | Cost (per ha) | Application |\n|---|---|---|---|\n")
		for _, f := range bundle.Fertilizers {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", cell(f.Name), cell(f.Quantity), domain.FormatINR(f.Cost), cell(f.Application))
		}
	}

	if len(bundle.SoilImprovements) > 0 {
		b.WriteString("\n## Soil Improvements\n\n")
		writeList(&b, bundle.SoilImprovements)
	}

	if bundle.IrrigationAdvice != "" {
		fmt.Fprintf(&b, "\n## Irrigation\n\n%s\n", inline(bundle.IrrigationAdvice))
	}

	fmt.Fprintf(&b, "\n## Budget\n\n**Estimated total:** %s per hectare\n", domain.FormatINR(bundle.TotalBudgetEstimate))
	return b.String()
}

// HTML renders the report as a standalone HTML document. Raw HTML in any
// field is dropped by the markdown renderer.
func (r Report) HTML() (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(r.Markdown()), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>" + html.EscapeString(title) + "</title>" +
		"<style>" + styleCSS + "</style></head><body><div class='report'>" +
		content.String() +
		"<div class='footer'>Generated by SoilSmart. Recommendations are indicative; confirm with your local agricultural extension office.</div>" +
		"</div></body></html>", nil
}

func writeList(b *strings.Builder, items []string) {
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", inline(it))
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// inline flattens a value onto one line.
func inline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cell makes a value safe inside a table row.
func cell(s string) string {
	return strings.ReplaceAll(inline(s), "|", `\|`)
}
