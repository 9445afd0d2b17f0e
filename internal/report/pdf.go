package report

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ErrChromeUnavailable is returned when no Chrome or Chromium binary is found.
var ErrChromeUnavailable = errors.New("chrome not available for pdf rendering")

// PDFRenderer prints report HTML to PDF with headless Chrome.
type PDFRenderer struct {
	chromePath string
	timeout    time.Duration
}

// NewPDFRenderer uses chromePath when set and searches the usual install
// locations otherwise.
func NewPDFRenderer(chromePath string, timeout time.Duration) *PDFRenderer {
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PDFRenderer{chromePath: chromePath, timeout: timeout}
}

// Available reports whether a browser binary was found.
func (r *PDFRenderer) Available() bool {
	return r.chromePath != ""
}

// Page is the printed layout of a report. Sizes are in inches.
type Page struct {
	Width, Height float64
	Margin        float64
	Footer        string
}

// A4 is the default report layout.
var A4 = Page{Width: 8.27, Height: 11.69, Margin: 0.5}

// Page returns the print layout for the report, with a footer naming the
// farm location and report date.
func (r Report) Page() Page {
	pg := A4
	parts := []string{"SoilSmart soil report"}
	if loc := inline(r.Context.Location); loc != "" {
		parts = append(parts, loc)
	}
	if !r.GeneratedAt.IsZero() {
		parts = append(parts, r.GeneratedAt.Format("2 Jan 2006"))
	}
	pg.Footer = strings.Join(parts, ", ")
	return pg
}

// printParams builds the Chrome print request for pg. The bottom margin
// leaves room for the footer line.
func printParams(pg Page) *page.PrintToPDFParams {
	footer := `<div style="width:100%;font-size:8px;color:#666;padding:0 0.4in;display:flex;justify-content:space-between;">` +
		`<span>` + html.EscapeString(pg.Footer) + `</span>` +
		`<span><span class="pageNumber"></span>/<span class="totalPages"></span></span></div>`
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithDisplayHeaderFooter(true).
		WithHeaderTemplate(`<span></span>`).
		WithFooterTemplate(footer).
		WithPaperWidth(pg.Width).
		WithPaperHeight(pg.Height).
		WithMarginTop(pg.Margin).
		WithMarginBottom(pg.Margin + 0.25).
		WithMarginLeft(pg.Margin).
		WithMarginRight(pg.Margin)
}

// Render loads htmlDoc into a blank tab and prints it with the layout pg.
func (r *PDFRenderer) Render(ctx context.Context, htmlDoc string, pg Page) ([]byte, error) {
	if !r.Available() {
		return nil, ErrChromeUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(r.chromePath),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	)...)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	var out []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, htmlDoc).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			out, _, err = printParams(pg).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return out, nil
}

func detectChromePath() string {
	candidates := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, name := range []string{"chromium", "google-chrome", "headless-shell"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}
