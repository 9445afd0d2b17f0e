// Package llm talks to hosted language models for soil report parsing,
// recommendation generation and image transcription.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soilsmart/soilsmart/internal/config"
	"github.com/soilsmart/soilsmart/internal/domain"
)

// Sampling settings shared by every provider.
const (
	temperature     = 0.1
	topP            = 0.8
	topK            = 10
	maxOutputTokens = 2048
)

// ErrDisabled is returned by New when no provider is configured.
var ErrDisabled = errors.New("llm disabled")

// LLM abstracts generative AI operations for testability.
type LLM interface {
	ParseSoilReport(ctx context.Context, text string) (*domain.SoilSample, error)
	GenerateRecommendations(ctx context.Context, sample domain.SoilSample, uctx domain.UserContext) (*domain.RecommendationBundle, error)
	TranscribeImage(ctx context.Context, data []byte, mimeType string) (string, error)
	Close() error
}

// Request is a single prompt sent to a Generator.
type Request struct {
	System    string
	User      string
	Image     []byte
	ImageMIME string
	// JSON asks the provider for a JSON-only response where supported.
	JSON bool
}

// Generator sends one request to a hosted model and returns its text output.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Close() error
}

// Client implements LLM on top of any Generator.
type Client struct {
	gen     Generator
	prompts *PromptTemplates
	timeout time.Duration
}

// NewClient wraps gen. A zero timeout leaves the caller's deadline alone.
func NewClient(gen Generator, prompts *PromptTemplates, timeout time.Duration) *Client {
	return &Client{gen: gen, prompts: prompts, timeout: timeout}
}

// New builds the Client for the configured provider. It returns ErrDisabled
// when the provider is "none" or has no credentials.
func New(ctx context.Context, cfg *config.Config, prompts *PromptTemplates) (*Client, error) {
	if !cfg.LLMEnabled() {
		return nil, ErrDisabled
	}

	var (
		gen Generator
		err error
	)
	switch cfg.LLM.Provider {
	case config.ProviderAnthropic:
		gen, err = NewAnthropicClient(cfg.LLM.AnthropicAPIKey, cfg.LLM.AnthropicModel)
	default:
		gen, err = NewGeminiClient(ctx, cfg.LLM.GeminiAPIKey, cfg.LLM.ProjectID, cfg.LLM.Region, cfg.LLM.GeminiModel)
	}
	if err != nil {
		return nil, err
	}
	return NewClient(gen, prompts, cfg.LLM.Timeout), nil
}

func (c *Client) generate(ctx context.Context, req Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.gen.Generate(ctx, req)
}

func (c *Client) ParseSoilReport(ctx context.Context, text string) (*domain.SoilSample, error) {
	userPrompt := RenderTemplate(c.prompts.SoilParseUser, map[string]string{
		"report_text": text,
	})

	raw, err := c.generate(ctx, Request{
		System: c.prompts.SoilParseSystem,
		User:   userPrompt,
		JSON:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("parse soil report: %w", err)
	}
	return decodeSoilSample(raw)
}

func (c *Client) GenerateRecommendations(ctx context.Context, sample domain.SoilSample, uctx domain.UserContext) (*domain.RecommendationBundle, error) {
	soilJSON, err := json.Marshal(sample)
	if err != nil {
		return nil, fmt.Errorf("marshal soil sample: %w", err)
	}
	contextJSON, err := json.Marshal(uctx)
	if err != nil {
		return nil, fmt.Errorf("marshal user context: %w", err)
	}

	userPrompt := RenderTemplate(c.prompts.RecommendUser, map[string]string{
		"soil_json":    string(soilJSON),
		"context_json": string(contextJSON),
	})

	raw, err := c.generate(ctx, Request{
		System: c.prompts.RecommendSystem,
		User:   userPrompt,
		JSON:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("generate recommendations: %w", err)
	}
	return decodeRecommendations(raw)
}

// TranscribeImage returns the text printed in an image of a soil report.
func (c *Client) TranscribeImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("transcribe image: empty image")
	}
	raw, err := c.generate(ctx, Request{
		User:      c.prompts.Transcribe,
		Image:     data,
		ImageMIME: mimeType,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe image: %w", err)
	}
	return strings.TrimSpace(raw), nil
}

func (c *Client) Close() error {
	return c.gen.Close()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
