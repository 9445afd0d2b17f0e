package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/soilsmart/soilsmart/internal/domain"
	"github.com/soilsmart/soilsmart/internal/logging"
)

// NewServer wires up all routes and middleware.
func NewServer(h *Handler, rateLimiter *IPRateLimiter, allowOrigin string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(h.cfg.MaxUploadBytes)

	// Stack middleware: outermost first.
	e.Use(Recovery)
	e.Use(RequestID)
	e.Use(CORS(allowOrigin))
	e.Use(Logging)
	e.Use(rateLimiter.Middleware)
	e.Use(middleware.BodyLimit(strconv.FormatInt(h.cfg.MaxUploadBytes, 10) + "B"))

	e.GET("/health", h.Health)

	api := e.Group("/api")
	api.POST("/parse-soil", h.ParseSoil)
	api.POST("/recommend", h.Recommend)
	api.POST("/analyze", h.Analyze)
	api.POST("/report", h.Report)
	api.POST("/irrigation-plan", h.IrrigationPlan)
	api.POST("/harvest-plan", h.HarvestPlan)

	return e
}

// errorHandler renders framework errors (unknown route, wrong method, body
// too large) in the ErrorResponse shape.
func errorHandler(maxUploadBytes int64) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *domain.AppError
		var he *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
		case errors.As(err, &he):
			appErr = fromHTTPError(he, maxUploadBytes)
		default:
			appErr = domain.NewInternalError("internal server error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(appErr.StatusCode)
		} else {
			err = respondAppError(c, appErr)
		}
		if err != nil {
			ctx := c.Request().Context()
			slog.ErrorContext(ctx, "write error response", logging.LogAttrs(ctx), "error", err)
		}
	}
}

func fromHTTPError(he *echo.HTTPError, maxUploadBytes int64) *domain.AppError {
	switch he.Code {
	case http.StatusRequestEntityTooLarge:
		return domain.NewPayloadTooLargeError(maxUploadBytes)
	case http.StatusTooManyRequests:
		return domain.NewRateLimitError()
	case http.StatusUnsupportedMediaType:
		return &domain.AppError{
			Category:   domain.ErrCatUnsupportedMedia,
			Message:    "unsupported media type",
			StatusCode: he.Code,
		}
	}

	cat := domain.ErrCatValidation
	if he.Code >= http.StatusInternalServerError {
		cat = domain.ErrCatUnknown
	}
	return &domain.AppError{
		Category:   cat,
		Message:    fmt.Sprint(he.Message),
		StatusCode: he.Code,
		Err:        he.Internal,
	}
}
