// Package render turns an uploaded PDF into an ordered sequence of page
// images. Rendering is all-or-nothing: a document that cannot be opened or a
// page that cannot be rasterized fails the whole run, because no downstream
// invariant can be satisfied on a partial page set.
package render

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kamatgc/AI-startup-analyst/internal/models"
	"github.com/kamatgc/AI-startup-analyst/internal/workspace"
)

// RenderError is the fatal failure class of the renderer. It aborts the run
// before any chunk work begins.
type RenderError struct {
	Message string
	Err     error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render failure: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("render failure: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Renderer rasterizes PDF pages into PNG images inside a run's workspace.
type Renderer struct {
	dpi float64
}

// NewRenderer creates a renderer that rasterizes at the given DPI. Higher DPI
// means larger attachments per analysis call, not different pipeline logic.
func NewRenderer(dpi float64) *Renderer {
	if dpi <= 0 {
		dpi = 300
	}
	return &Renderer{dpi: dpi}
}

// PageCount validates and optimizes the uploaded PDF in place inside the
// workspace and returns its page count. A document pdfcpu cannot open or
// repair is a RenderError.
func (r *Renderer) PageCount(ws *workspace.Workspace, pdfPath string) (string, int, error) {
	optimizedPath := filepath.Join(ws.Dir(), "optimized.pdf")
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	if err := api.OptimizeFile(pdfPath, optimizedPath, cfg); err != nil {
		return "", 0, &RenderError{Message: "failed to validate/optimize PDF", Err: err}
	}

	pageCount, err := api.PageCountFile(optimizedPath)
	if err != nil {
		return "", 0, &RenderError{Message: "failed to get page count", Err: err}
	}
	return optimizedPath, pageCount, nil
}

// Render rasterizes every page of the optimized PDF, in page order, into the
// workspace. onPage is invoked before each page is rasterized so the caller
// can drive its progress display; it may be nil.
func (r *Renderer) Render(ctx context.Context, ws *workspace.Workspace, pdfPath string, onPage func(page, total int)) ([]models.PageImage, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, &RenderError{Message: "failed to open PDF for rasterization", Err: err}
	}
	defer doc.Close()

	total := doc.NumPage()
	images := make([]models.PageImage, 0, total)

	for page := 0; page < total; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if onPage != nil {
			onPage(page+1, total)
		}

		img, err := doc.ImageDPI(page, r.dpi)
		if err != nil {
			return nil, &RenderError{Message: fmt.Sprintf("failed to rasterize page %d", page+1), Err: err}
		}

		outPath := ws.PagePath(page + 1)
		out, err := os.Create(outPath)
		if err != nil {
			return nil, &RenderError{Message: fmt.Sprintf("failed to create image file for page %d", page+1), Err: err}
		}
		err = png.Encode(out, img)
		out.Close()
		if err != nil {
			return nil, &RenderError{Message: fmt.Sprintf("failed to encode page %d", page+1), Err: err}
		}

		images = append(images, models.PageImage{
			Index:    page,
			Path:     outPath,
			MIMEType: "image/png",
		})
	}

	return images, nil
}
