// Package document turns uploaded soil reports into plain text.
package document

import (
	"cmp"
	"context"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/soilsmart/soilsmart/internal/domain"
)

// Supported media types.
const (
	MIMEPDF   = "application/pdf"
	MIMEPNG   = "image/png"
	MIMEJPEG  = "image/jpeg"
	MIMEText  = "text/plain"
	MIMEHTML  = "text/html"
	mimeOctet = "application/octet-stream"
)

var aliases = map[string]string{
	"image/jpg":         MIMEJPEG,
	"image/pjpeg":       MIMEJPEG,
	"application/x-pdf": MIMEPDF,
}

var byExtension = map[string]string{
	".pdf":  MIMEPDF,
	".png":  MIMEPNG,
	".jpg":  MIMEJPEG,
	".jpeg": MIMEJPEG,
	".txt":  MIMEText,
	".htm":  MIMEHTML,
	".html": MIMEHTML,
}

// Transcriber reads the text printed in an image.
type Transcriber interface {
	TranscribeImage(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Extractor converts report files to text. Images need a Transcriber; a
// nil one makes image uploads fail with an unavailable error.
type Extractor struct {
	transcriber Transcriber
}

func NewExtractor(t Transcriber) *Extractor {
	return &Extractor{transcriber: t}
}

// Extract returns the text content of data. declared is the client's
// Content-Type and may be empty.
func (e *Extractor) Extract(ctx context.Context, data []byte, filename, declared string) (string, error) {
	mt, err := DetectMIME(data, filename, declared)
	if err != nil {
		return "", err
	}

	var text string
	switch mt {
	case MIMEPDF:
		text, err = pdfText(data)
		if err != nil {
			return "", domain.NewExtractionError("Could not read the PDF file", err)
		}
	case MIMEPNG, MIMEJPEG:
		if e.transcriber == nil {
			return "", domain.NewUnavailableError("Image reports need an LLM provider to be configured", nil)
		}
		text, err = e.transcriber.TranscribeImage(ctx, data, mt)
		if err != nil {
			return "", domain.NewExtractionError("Could not read text from the image", err)
		}
	case MIMEHTML:
		text, err = htmlText(data)
		if err != nil {
			return "", domain.NewExtractionError("Could not read the HTML file", err)
		}
	default:
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if err := domain.ValidateReportText(text); err != nil {
		return "", err
	}
	return text, nil
}

// DetectMIME resolves the media type of an upload. A declared type wins when
// it is specific; otherwise the content is sniffed and then the file
// extension consulted. Unsupported types yield a 415 AppError.
func DetectMIME(data []byte, filename, declared string) (string, error) {
	if mt := normalize(declared); mt != "" && mt != mimeOctet {
		if supported(mt) {
			return mt, nil
		}
		return "", domain.NewUnsupportedMediaError(mt)
	}

	if len(data) > 0 {
		if mt := normalize(http.DetectContentType(data)); supported(mt) {
			return mt, nil
		}
	}
	if mt, ok := byExtension[strings.ToLower(filepath.Ext(filename))]; ok {
		return mt, nil
	}
	return "", domain.NewUnsupportedMediaError(cmp.Or(normalize(declared), mimeOctet))
}

func normalize(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	if a, ok := aliases[mt]; ok {
		return a
	}
	return mt
}

func supported(mt string) bool {
	switch mt {
	case MIMEPDF, MIMEPNG, MIMEJPEG, MIMEText, MIMEHTML:
		return true
	}
	return false
}
