package domain

import "fmt"

// ErrorCategory classifies errors for logging and response.
type ErrorCategory string

const (
	ErrCatValidation       ErrorCategory = "validation"
	ErrCatUnsupportedMedia ErrorCategory = "unsupported_media"
	ErrCatPayloadTooLarge  ErrorCategory = "payload_too_large"
	ErrCatExtraction       ErrorCategory = "extraction"
	ErrCatRateLimit        ErrorCategory = "rate_limit"
	ErrCatLLM              ErrorCategory = "llm_error"
	ErrCatUnavailable      ErrorCategory = "unavailable"
	ErrCatUnknown          ErrorCategory = "unknown"
)

// AppError wraps an error with a category and HTTP status code.
type AppError struct {
	Category      ErrorCategory
	Message       string
	StatusCode    int
	MissingFields []string
	Err           error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string) *AppError {
	return &AppError{
		Category:   ErrCatValidation,
		Message:    msg,
		StatusCode: 400,
	}
}

// NewMissingFieldsError reports required soil fields absent from a request.
func NewMissingFieldsError(fields []string) *AppError {
	return &AppError{
		Category:      ErrCatValidation,
		Message:       "Missing required soil data fields",
		StatusCode:    400,
		MissingFields: fields,
	}
}

func NewUnsupportedMediaError(mimeType string) *AppError {
	return &AppError{
		Category:   ErrCatUnsupportedMedia,
		Message:    fmt.Sprintf("Invalid file type %q. Only PDF, PNG, JPG, HTML and TXT files are allowed.", mimeType),
		StatusCode: 415,
	}
}

func NewPayloadTooLargeError(limit int64) *AppError {
	return &AppError{
		Category:   ErrCatPayloadTooLarge,
		Message:    fmt.Sprintf("File too large (max %d bytes)", limit),
		StatusCode: 413,
	}
}

func NewExtractionError(msg string, err error) *AppError {
	return &AppError{
		Category:   ErrCatExtraction,
		Message:    msg,
		StatusCode: 422,
		Err:        err,
	}
}

func NewRateLimitError() *AppError {
	return &AppError{
		Category:   ErrCatRateLimit,
		Message:    "rate limit exceeded",
		StatusCode: 429,
	}
}

func NewLLMError(msg string, err error) *AppError {
	return &AppError{
		Category:   ErrCatLLM,
		Message:    msg,
		StatusCode: 502,
		Err:        err,
	}
}

func NewUnavailableError(msg string, err error) *AppError {
	return &AppError{
		Category:   ErrCatUnavailable,
		Message:    msg,
		StatusCode: 503,
		Err:        err,
	}
}

func NewInternalError(msg string, err error) *AppError {
	return &AppError{
		Category:   ErrCatUnknown,
		Message:    msg,
		StatusCode: 500,
		Err:        err,
	}
}
