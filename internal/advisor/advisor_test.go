package advisor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"

	"github.com/soilsmart/soilsmart/internal/domain"
	"github.com/soilsmart/soilsmart/internal/fallback"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

const report = "pH: 6.2, Organic Matter: 3.5%, Nitrogen: 25 ppm, Phosphorus: 18 ppm, Potassium: 180 ppm, Loam, Medium"

type mockLLM struct {
	sample    *domain.SoilSample
	bundle    *domain.RecommendationBundle
	parseErr  error
	recErr    error
	gotSample domain.SoilSample
	gotCtx    domain.UserContext
}

func (m *mockLLM) ParseSoilReport(_ context.Context, _ string) (*domain.SoilSample, error) {
	return m.sample, m.parseErr
}

func (m *mockLLM) GenerateRecommendations(_ context.Context, s domain.SoilSample, u domain.UserContext) (*domain.RecommendationBundle, error) {
	m.gotSample, m.gotCtx = s, u
	return m.bundle, m.recErr
}

func (m *mockLLM) TranscribeImage(context.Context, []byte, string) (string, error) {
	return "", errors.New("not used")
}

func (m *mockLLM) Close() error { return nil }

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func spanSource(t *testing.T, sr *tracetest.SpanRecorder, name string) string {
	t.Helper()
	for _, s := range sr.Ended() {
		if s.Name() != name {
			continue
		}
		for _, kv := range s.Attributes() {
			if kv.Key == sourceKey {
				return kv.Value.AsString()
			}
		}
	}
	t.Fatalf("span %q with source not found", name)
	return ""
}

func TestParseReport_NoLLMUsesFallback(t *testing.T) {
	svc := New(nil, 0)
	assert.False(t, svc.LLMEnabled())

	got, src := svc.ParseReport(context.Background(), report)
	assert.Equal(t, domain.SourceFallback, src)
	if diff := cmp.Diff(fallback.Parse(report), got); diff != "" {
		t.Errorf("sample mismatch (-want +got):\n%s", diff)
	}
}

func TestParseReport_LLMResultIsNormalized(t *testing.T) {
	sr := recordSpans(t)
	m := &mockLLM{sample: &domain.SoilSample{
		SoilHealthScore: 12,
		PHLevel:         6.2,
		OrganicMatter:   3.5,
		Nitrogen:        25,
		Phosphorus:      18,
		Potassium:       180,
		SoilTexture:     "loam",
		MoistureLevel:   "damp",
		Recommendations: []string{"Keep it up"},
	}}
	svc := New(m, 0)

	got, src := svc.ParseReport(context.Background(), report)
	assert.Equal(t, domain.SourceLLM, src)
	assert.Equal(t, 95, got.SoilHealthScore, "score is recomputed")
	assert.Equal(t, domain.TextureLoam, got.SoilTexture)
	assert.Equal(t, domain.MoistureMedium, got.MoistureLevel)
	assert.Equal(t, []string{"Keep it up"}, got.Recommendations)
	assert.Equal(t, "llm", spanSource(t, sr, "advisor.ParseReport"))
}

func TestParseReport_LLMErrorFallsBack(t *testing.T) {
	sr := recordSpans(t)
	svc := New(&mockLLM{parseErr: errors.New("timeout")}, 0)

	got, src := svc.ParseReport(context.Background(), report)
	assert.Equal(t, domain.SourceFallback, src)
	assert.Equal(t, fallback.Parse(report), got)
	assert.Equal(t, "fallback", spanSource(t, sr, "advisor.ParseReport"))

	var parse sdktrace.ReadOnlySpan
	for _, s := range sr.Ended() {
		if s.Name() == "advisor.ParseReport" {
			parse = s
		}
	}
	require.NotNil(t, parse)
	require.NotEmpty(t, parse.Events(), "llm error recorded on span")
	assert.Equal(t, "exception", parse.Events()[0].Name)
}

func TestRecommend_LLM(t *testing.T) {
	want := &domain.RecommendationBundle{
		CropSuggestions:     []domain.CropCandidate{{CropName: "Rice", SuitabilityScore: 90}},
		Fertilizers:         []domain.FertilizerRecommendation{},
		SoilImprovements:    []string{},
		TotalBudgetEstimate: 9000,
	}
	m := &mockLLM{bundle: want}
	svc := New(m, 0)

	sample := fallback.Parse(report)
	uctx := domain.UserContext{Location: "Punjab", Budget: 20000}
	got, src := svc.Recommend(context.Background(), sample, uctx)
	assert.Equal(t, domain.SourceLLM, src)
	assert.Equal(t, *want, got)
	assert.Equal(t, sample, m.gotSample)
	assert.Equal(t, uctx, m.gotCtx)
}

func TestRecommend_FallbackUsesDefaultBudget(t *testing.T) {
	svc := New(&mockLLM{recErr: errors.New("invalid llm response")}, 30000)

	sample := fallback.Parse(report)
	got, src := svc.Recommend(context.Background(), sample, domain.UserContext{})
	assert.Equal(t, domain.SourceFallback, src)
	assert.Equal(t, fallback.Recommendations(sample, domain.UserContext{}, 30000), got)
}

func TestAnalyze_MixedSources(t *testing.T) {
	sr := recordSpans(t)
	m := &mockLLM{
		parseErr: errors.New("quota"),
		bundle:   &domain.RecommendationBundle{CropSuggestions: []domain.CropCandidate{}, Fertilizers: []domain.FertilizerRecommendation{}, TotalBudgetEstimate: 1},
	}
	svc := New(m, 0)

	a := svc.Analyze(context.Background(), report, domain.UserContext{})
	assert.Equal(t, domain.SourceFallback, a.SampleSource)
	assert.Equal(t, domain.SourceLLM, a.BundleSource)
	assert.Equal(t, a.Sample, m.gotSample)

	names := map[string]bool{}
	for _, s := range sr.Ended() {
		names[s.Name()] = true
	}
	assert.True(t, names["advisor.Analyze"])
	assert.True(t, names["advisor.ParseReport"])
	assert.True(t, names["advisor.Recommend"])
}
