package llm

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// PromptTemplates holds parsed prompt templates from docs/prompts.md.
type PromptTemplates struct {
	SoilParseSystem string
	SoilParseUser   string
	RecommendSystem string
	RecommendUser   string
	Transcribe      string
}

// LoadPrompts parses the prompts.md file and extracts named templates.
// Expected format: ## template_name followed by a fenced code block.
func LoadPrompts(path string) (*PromptTemplates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	pt, err := ParsePrompts(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pt, nil
}

// ParsePrompts extracts the templates from markdown content.
func ParsePrompts(content string) (*PromptTemplates, error) {
	sections := parsePromptSections(content)

	pt := &PromptTemplates{}
	for _, s := range []struct {
		name string
		dst  *string
	}{
		{"soil_parse_system", &pt.SoilParseSystem},
		{"soil_parse_user", &pt.SoilParseUser},
		{"recommend_system", &pt.RecommendSystem},
		{"recommend_user", &pt.RecommendUser},
		{"image_transcribe", &pt.Transcribe},
	} {
		v, ok := sections[s.name]
		if !ok || v == "" {
			return nil, fmt.Errorf("prompt section %q not found", s.name)
		}
		*s.dst = v
	}
	return pt, nil
}

var sectionHeaderRe = regexp.MustCompile(`(?m)^## (.+)$`)

// parsePromptSections extracts named sections from a markdown file.
// Each section is a ## heading followed by a fenced code block.
func parsePromptSections(content string) map[string]string {
	sections := make(map[string]string)

	matches := sectionHeaderRe.FindAllStringSubmatchIndex(content, -1)
	for i, match := range matches {
		name := strings.TrimSpace(content[match[2]:match[3]])

		// Get the content between this header and the next one (or EOF).
		start := match[1]
		end := len(content)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		sections[name] = extractCodeBlock(content[start:end])
	}

	return sections
}

// extractCodeBlock extracts the content of the first fenced code block from text.
func extractCodeBlock(text string) string {
	var result []string
	inBlock := false
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inBlock {
				break
			}
			inBlock = true
			continue
		}
		if inBlock {
			result = append(result, line)
		}
	}
	return strings.TrimSpace(strings.Join(result, "\n"))
}

// RenderTemplate replaces {{key}} placeholders in a template string.
func RenderTemplate(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
