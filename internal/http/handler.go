package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soilsmart/soilsmart/internal/advisor"
	"github.com/soilsmart/soilsmart/internal/document"
	"github.com/soilsmart/soilsmart/internal/domain"
	"github.com/soilsmart/soilsmart/internal/fallback"
	"github.com/soilsmart/soilsmart/internal/irrigation"
	"github.com/soilsmart/soilsmart/internal/logging"
	"github.com/soilsmart/soilsmart/internal/market"
	"github.com/soilsmart/soilsmart/internal/report"
)

const serviceName = "SoilSmart Backend"

// Config holds handler configuration.
type Config struct {
	MaxUploadBytes int64
}

// PDFRenderer prints an HTML document to PDF.
type PDFRenderer interface {
	Render(ctx context.Context, htmlDoc string, pg report.Page) ([]byte, error)
}

// Handler implements the /health and /api endpoints.
type Handler struct {
	advisor   *advisor.Service
	extractor *document.Extractor
	pdf       PDFRenderer
	cfg       Config
	now       func() time.Time
}

func NewHandler(svc *advisor.Service, extractor *document.Extractor, pdf PDFRenderer, cfg Config) *Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		advisor:   svc,
		extractor: extractor,
		pdf:       pdf,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (h *Handler) Health(c echo.Context) error {
	llmState := "disabled"
	if h.advisor.LLMEnabled() {
		llmState = "enabled"
	}
	return c.JSON(http.StatusOK, domain.HealthResponse{
		Status:    "OK",
		Timestamp: h.now().UTC(),
		Service:   serviceName,
		LLM:       llmState,
	})
}

// ParseSoil accepts a report file, form text or JSON text and returns the
// parsed soil sample.
func (h *Handler) ParseSoil(c echo.Context) error {
	ctx := c.Request().Context()

	text, _, err := h.readReport(c)
	if err != nil {
		return respondAppError(c, err)
	}

	sample, src := h.advisor.ParseReport(ctx, text)
	slog.InfoContext(ctx, "soil parsed",
		logging.LogAttrs(ctx),
		"source", src,
		"text_bytes", len(text),
		"soil_health_score", sample.SoilHealthScore,
	)

	return c.JSON(http.StatusOK, domain.ParseResponse{
		Success:       true,
		Data:          sample,
		ExtractedText: domain.Preview(text),
		Source:        src,
	})
}

func (h *Handler) Recommend(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.RecommendRequest
	if err := c.Bind(&req); err != nil {
		return respondAppError(c, domain.NewValidationError("invalid JSON body"))
	}
	if err := req.Validate(); err != nil {
		return respondAppError(c, err)
	}

	sample := fallback.FromInput(*req.SoilData)
	bundle, src := h.advisor.Recommend(ctx, sample, *req.UserContext)
	slog.InfoContext(ctx, "recommendations built",
		logging.LogAttrs(ctx),
		"source", src,
		"crops", len(bundle.CropSuggestions),
		"total_budget", bundle.TotalBudgetEstimate,
	)

	return c.JSON(http.StatusOK, domain.RecommendResponse{
		Success: true,
		Data:    bundle,
		Source:  src,
	})
}

// Analyze parses a report and recommends in one call.
func (h *Handler) Analyze(c echo.Context) error {
	ctx := c.Request().Context()

	text, uctx, err := h.readReport(c)
	if err != nil {
		return respondAppError(c, err)
	}

	a := h.advisor.Analyze(ctx, text, uctx)
	slog.InfoContext(ctx, "soil analyzed",
		logging.LogAttrs(ctx),
		"soil_source", a.SampleSource,
		"recommendation_source", a.BundleSource,
	)

	return c.JSON(http.StatusOK, domain.AnalyzeResponse{
		Success:         true,
		SoilData:        a.Sample,
		Recommendations: a.Bundle,
		ExtractedText:   domain.Preview(text),
		Sources: domain.AnalyzeSources{
			SoilData:        a.SampleSource,
			Recommendations: a.BundleSource,
		},
	})
}

// Report renders a downloadable HTML or PDF report. Recommendations are
// generated when the request does not carry them.
func (h *Handler) Report(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.ReportRequest
	if err := c.Bind(&req); err != nil {
		return respondAppError(c, domain.NewValidationError("invalid JSON body"))
	}
	if err := req.Validate(); err != nil {
		return respondAppError(c, err)
	}

	rep := report.Report{
		Sample:      fallback.FromInput(*req.SoilData),
		Context:     *req.UserContext,
		GeneratedAt: h.now(),
	}
	if req.Recommendations != nil {
		rep.Bundle = *req.Recommendations
	} else {
		rep.Bundle, _ = h.advisor.Recommend(ctx, rep.Sample, rep.Context)
	}

	doc, err := rep.HTML()
	if err != nil {
		return respondAppError(c, domain.NewInternalError("Failed to render report", err))
	}
	if req.Format == domain.ReportFormatHTML {
		return c.HTML(http.StatusOK, doc)
	}

	pdf, err := h.pdf.Render(ctx, doc, rep.Page())
	if err != nil {
		slog.ErrorContext(ctx, "pdf render failed", logging.LogAttrs(ctx), "error", err)
		if errors.Is(err, report.ErrChromeUnavailable) {
			return respondAppError(c, domain.NewUnavailableError("PDF rendering is not available on this server", err))
		}
		return respondAppError(c, domain.NewInternalError("Failed to render PDF report", err))
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="soil-report.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) IrrigationPlan(c echo.Context) error {
	var req domain.IrrigationPlanRequest
	if err := c.Bind(&req); err != nil {
		return respondAppError(c, domain.NewValidationError("invalid JSON body"))
	}
	if err := req.Validate(); err != nil {
		return respondAppError(c, err)
	}

	rep, err := irrigation.Build(req.Method, req.Crop, req.Soil, req.Season, req.Area)
	if err != nil {
		if errors.Is(err, irrigation.ErrUnknownMethod) {
			return respondAppError(c, domain.NewValidationError(err.Error()))
		}
		return respondAppError(c, domain.NewInternalError("Failed to build irrigation plan", err))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": rep})
}

func (h *Handler) HarvestPlan(c echo.Context) error {
	var req domain.HarvestPlanRequest
	if err := c.Bind(&req); err != nil {
		return respondAppError(c, domain.NewValidationError("invalid JSON body"))
	}
	if err := req.Validate(); err != nil {
		return respondAppError(c, err)
	}

	month, err := market.HarvestMonth(req.ExpectedHarvestDate)
	if err != nil {
		return respondAppError(c, domain.NewValidationError("expectedHarvestDate must be a date like 2006-01-02"))
	}
	advice := market.Advise(req.Crop, month, req.Location)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": advice})
}

// readReport collects report text and farm context from a JSON body, a
// multipart upload or a plain form.
func (h *Handler) readReport(c echo.Context) (string, domain.UserContext, error) {
	r := c.Request()
	if strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		var req domain.AnalyzeRequest
		if err := c.Bind(&req); err != nil {
			return "", domain.UserContext{}, domain.NewValidationError("invalid JSON body")
		}
		text, err := checkText(req.Text)
		return text, req.UserContext, err
	}

	fh, err := c.FormFile("file")
	switch {
	case err == nil:
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case isTooLarge(err):
		return "", domain.UserContext{}, domain.NewPayloadTooLargeError(h.cfg.MaxUploadBytes)
	default:
		return "", domain.UserContext{}, domain.NewValidationError("invalid form body")
	}

	uctx, err := formContext(c)
	if err != nil {
		return "", uctx, err
	}

	if fh == nil {
		text, err := checkText(c.FormValue("text"))
		return text, uctx, err
	}

	text, err := h.extractFile(r.Context(), fh)
	return text, uctx, err
}

func (h *Handler) extractFile(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > h.cfg.MaxUploadBytes {
		return "", domain.NewPayloadTooLargeError(h.cfg.MaxUploadBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return "", domain.NewExtractionError("Could not read the uploaded file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.cfg.MaxUploadBytes+1))
	if err != nil {
		return "", domain.NewExtractionError("Could not read the uploaded file", err)
	}
	if int64(len(data)) > h.cfg.MaxUploadBytes {
		return "", domain.NewPayloadTooLargeError(h.cfg.MaxUploadBytes)
	}
	return h.extractor.Extract(ctx, data, fh.Filename, fh.Header.Get(echo.HeaderContentType))
}

func checkText(text string) (string, error) {
	if text == "" {
		return "", domain.NewValidationError("No file or text provided")
	}
	if err := domain.ValidateReportText(text); err != nil {
		return "", err
	}
	return text, nil
}

func formContext(c echo.Context) (domain.UserContext, error) {
	uctx := domain.UserContext{
		Location:       strings.TrimSpace(c.FormValue("location")),
		CropPreference: strings.TrimSpace(c.FormValue("cropPreference")),
	}
	if err := uctx.Budget.UnmarshalText([]byte(c.FormValue("budget"))); err != nil {
		return uctx, domain.NewValidationError("budget must be a number")
	}
	return uctx, nil
}

func isTooLarge(err error) bool {
	var he *echo.HTTPError
	return errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge
}

func respondAppError(c echo.Context, err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		if appErr.StatusCode >= http.StatusInternalServerError {
			ctx := c.Request().Context()
			slog.ErrorContext(ctx, "request failed", logging.LogAttrs(ctx), "error", err)
		}
		return c.JSON(appErr.StatusCode, domain.ErrorResponse{
			Error:         appErr.Message,
			Code:          string(appErr.Category),
			MissingFields: appErr.MissingFields,
		})
	}
	return c.JSON(http.StatusInternalServerError, domain.ErrorResponse{
		Error: "internal server error",
		Code:  string(domain.ErrCatUnknown),
	})
}
