// Package advisor runs soil analysis against the LLM and falls back to the
// deterministic engine whenever the model is disabled or fails.
package advisor

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/soilsmart/soilsmart/internal/domain"
	"github.com/soilsmart/soilsmart/internal/fallback"
	"github.com/soilsmart/soilsmart/internal/llm"
	"github.com/soilsmart/soilsmart/internal/logging"
	"github.com/soilsmart/soilsmart/internal/telemetry"
)

const sourceKey = attribute.Key("soilsmart.source")

// Service produces soil samples and recommendation bundles. Its methods
// never fail: an LLM error is logged and answered by the fallback engine.
type Service struct {
	llm           llm.LLM
	defaultBudget float64
	tracer        trace.Tracer
}

// New returns a Service. model may be nil, in which case every call uses the
// fallback engine. defaultBudget applies to requests without a budget.
func New(model llm.LLM, defaultBudget float64) *Service {
	if defaultBudget <= 0 {
		defaultBudget = domain.DefaultBudget
	}
	return &Service{
		llm:           model,
		defaultBudget: defaultBudget,
		tracer:        telemetry.Tracer(),
	}
}

// LLMEnabled reports whether an LLM is configured.
func (s *Service) LLMEnabled() bool {
	return s.llm != nil
}

// ParseReport turns report text into a normalized soil sample.
func (s *Service) ParseReport(ctx context.Context, text string) (domain.SoilSample, domain.Source) {
	ctx, span := s.tracer.Start(ctx, "advisor.ParseReport",
		trace.WithAttributes(attribute.Int("soilsmart.text_bytes", len(text))))
	defer span.End()

	if s.llm != nil {
		start := time.Now()
		sample, err := s.llm.ParseSoilReport(ctx, text)
		if err == nil {
			span.SetAttributes(sourceKey.String(string(domain.SourceLLM)))
			slog.InfoContext(ctx, "soil report parsed",
				logging.LogAttrs(ctx),
				"source", domain.SourceLLM,
				"llm_ms", time.Since(start).Milliseconds(),
			)
			return fallback.Normalize(*sample), domain.SourceLLM
		}
		s.fallingBack(ctx, span, "parse", err)
	}

	span.SetAttributes(sourceKey.String(string(domain.SourceFallback)))
	return fallback.Parse(text), domain.SourceFallback
}

// Recommend builds farming advice for a sample.
func (s *Service) Recommend(ctx context.Context, sample domain.SoilSample, uctx domain.UserContext) (domain.RecommendationBundle, domain.Source) {
	ctx, span := s.tracer.Start(ctx, "advisor.Recommend",
		trace.WithAttributes(
			attribute.Int("soilsmart.soil_health_score", sample.SoilHealthScore),
			attribute.String("soilsmart.crop_preference", uctx.CropPreference),
		))
	defer span.End()

	if s.llm != nil {
		start := time.Now()
		bundle, err := s.llm.GenerateRecommendations(ctx, sample, uctx)
		if err == nil {
			span.SetAttributes(sourceKey.String(string(domain.SourceLLM)))
			slog.InfoContext(ctx, "recommendations generated",
				logging.LogAttrs(ctx),
				"source", domain.SourceLLM,
				"crops", len(bundle.CropSuggestions),
				"llm_ms", time.Since(start).Milliseconds(),
			)
			return *bundle, domain.SourceLLM
		}
		s.fallingBack(ctx, span, "recommend", err)
	}

	span.SetAttributes(sourceKey.String(string(domain.SourceFallback)))
	return fallback.Recommendations(sample, uctx, s.defaultBudget), domain.SourceFallback
}

// Analysis is the result of a one-shot parse and recommend.
type Analysis struct {
	Sample       domain.SoilSample
	SampleSource domain.Source
	Bundle       domain.RecommendationBundle
	BundleSource domain.Source
}

func (s *Service) Analyze(ctx context.Context, text string, uctx domain.UserContext) Analysis {
	ctx, span := s.tracer.Start(ctx, "advisor.Analyze")
	defer span.End()

	var a Analysis
	a.Sample, a.SampleSource = s.ParseReport(ctx, text)
	a.Bundle, a.BundleSource = s.Recommend(ctx, a.Sample, uctx)
	return a
}

func (s *Service) fallingBack(ctx context.Context, span trace.Span, op string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "llm failed")
	slog.WarnContext(ctx, "llm failed, using fallback engine",
		logging.LogAttrs(ctx),
		"operation", op,
		"error", err,
	)
}
