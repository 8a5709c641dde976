package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kamatgc/AI-startup-analyst/internal/models"
	"github.com/kamatgc/AI-startup-analyst/internal/workspace"
)

// PageRenderer is the collaborator that turns the uploaded document into an
// ordered sequence of page images. Satisfied by *render.Renderer.
type PageRenderer interface {
	PageCount(ws *workspace.Workspace, pdfPath string) (optimizedPath string, pages int, err error)
	Render(ctx context.Context, ws *workspace.Workspace, pdfPath string, onPage func(page, total int)) ([]models.PageImage, error)
}

// Options tune one orchestrator instance. Zero values fall back to the
// original pipeline's behaviour.
type Options struct {
	ChunkSize   int
	Concurrency int
}

// Orchestrator drives a full analysis run: render, batch, summarize,
// synthesize, emitting ordered progress events throughout and guaranteeing
// workspace cleanup on every exit path.
type Orchestrator struct {
	renderer    PageRenderer
	chunkClient Invoker
	synthClient Invoker
	chunkSize   int
	concurrency int
}

// NewOrchestrator wires a pipeline. chunkClient and synthClient usually share
// one HTTP client but carry different retry budgets.
func NewOrchestrator(renderer PageRenderer, chunkClient, synthClient Invoker, opts Options) *Orchestrator {
	chunkSize := opts.ChunkSize
	if chunkSize < 1 {
		chunkSize = 5
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{
		renderer:    renderer,
		chunkClient: chunkClient,
		synthClient: synthClient,
		chunkSize:   chunkSize,
		concurrency: concurrency,
	}
}

// Run processes one uploaded document. It returns immediately with the run's
// progress stream; the stream is closed after exactly one terminal event, or
// without one if ctx is canceled first (a disconnected caller gets nothing,
// but cleanup still runs).
func (o *Orchestrator) Run(ctx context.Context, filename string, upload io.Reader) <-chan models.ProgressEvent {
	events := make(chan models.ProgressEvent, 16)
	go func() {
		defer close(events)
		o.run(ctx, filename, upload, events)
	}()
	return events
}

func (o *Orchestrator) run(ctx context.Context, filename string, upload io.Reader, events chan<- models.ProgressEvent) {
	doc := models.Document{
		ID:               uuid.NewString(),
		OriginalFilename: filename,
		ReceivedAt:       time.Now(),
	}
	logCtx := slog.With("documentId", doc.ID, "filename", filename)
	logCtx.Info("Starting analysis run.")

	// --- 1. Acquire the transient workspace; release on every exit path ---
	ws, err := workspace.New(doc.ID)
	if err != nil {
		logCtx.Error("Failed to create workspace", "error", err)
		o.fail(ctx, events, err)
		return
	}
	defer ws.Cleanup()

	sourcePath, err := ws.SaveUpload(filename, upload)
	if err != nil {
		logCtx.Error("Failed to store upload", "error", err)
		o.fail(ctx, events, err)
		return
	}
	doc.SourcePath = sourcePath

	// --- 2. Validate the document and report the page count ---
	optimizedPath, pageCount, err := o.renderer.PageCount(ws, sourcePath)
	if err != nil {
		logCtx.Error("Document validation failed", "error", err)
		o.fail(ctx, events, err)
		return
	}
	doc.PageCount = pageCount
	logCtx = logCtx.With("pageCount", pageCount)

	if !o.emit(ctx, events, models.StageReceived, fmt.Sprintf("PDF uploaded. Total pages: %d", pageCount)) {
		return
	}
	estimatedSec := max(30, pageCount*8)
	if !o.emit(ctx, events, models.StageReceived,
		fmt.Sprintf("Estimated processing time: %d min %d sec", estimatedSec/60, estimatedSec%60)) {
		return
	}

	if pageCount == 0 {
		// An empty document is an empty result, not an error.
		logCtx.Info("Document has no pages; emitting empty-result report.")
		o.complete(ctx, events, models.FinalReport{
			Text:   "The document contains no pages. No analysis was performed.",
			Status: models.SynthesisOK,
		})
		return
	}

	// --- 3. Render every page, in page order ---
	images, err := o.renderer.Render(ctx, ws, optimizedPath, func(page, total int) {
		o.emit(ctx, events, models.StageRendering, fmt.Sprintf("Scanning page %d of %d...", page, total))
	})
	if err != nil {
		if ctx.Err() != nil {
			logCtx.Info("Run canceled during rendering.")
			return
		}
		logCtx.Error("Rendering failed", "error", err)
		o.fail(ctx, events, err)
		return
	}

	// --- 4. Partition into chunks ---
	chunks := Partition(images, o.chunkSize)
	if !o.emit(ctx, events, models.StageBatching,
		fmt.Sprintf("Chunking complete: %d chunks, %d pages per chunk", len(chunks), o.chunkSize)) {
		return
	}

	// --- 5. Summarize every chunk; one chunk's failure never cancels its siblings ---
	summaries, ok := o.summarizeAll(ctx, events, chunks)
	if !ok {
		logCtx.Info("Run canceled during chunk analysis.")
		return
	}

	// --- 6. Synthesize the final memo ---
	if !o.emit(ctx, events, models.StageSynthesizing, "Now synthesizing final memo...") {
		return
	}
	report := NewSynthesizer(o.synthClient).Synthesize(ctx, summaries)
	if ctx.Err() != nil {
		logCtx.Info("Run canceled during synthesis.")
		return
	}

	if report.Status == models.SynthesisOK {
		if !o.emit(ctx, events, models.StageSynthesizing, "Final memo synthesis complete. Sending response...") {
			return
		}
	}
	logCtx.Info("Analysis run finished.", "synthesisStatus", string(report.Status))
	o.complete(ctx, events, report)
}

// summarizeAll dispatches chunk analysis in chunk order with bounded
// concurrency and restores index order before handing the summaries on.
// It returns ok=false only when the run was canceled.
func (o *Orchestrator) summarizeAll(ctx context.Context, events chan<- models.ProgressEvent, chunks []models.Chunk) ([]models.ChunkSummary, bool) {
	summarizer := NewSummarizer(o.chunkClient)
	summaries := make([]models.ChunkSummary, len(chunks))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(o.concurrency)

	for _, chunk := range chunks {
		if !o.emit(ctx, events, models.StageSummarizing,
			fmt.Sprintf("Analyzing chunk %d of %d...", chunk.Index+1, len(chunks))) {
			return nil, false
		}
		eg.Go(func() error {
			summaries[chunk.Index] = summarizer.Summarize(gctx, chunk, len(chunks))
			return nil
		})
	}

	// Summarize never returns an error; Wait only surfaces cancellation.
	_ = eg.Wait()
	if ctx.Err() != nil {
		return nil, false
	}
	return summaries, true
}

func (o *Orchestrator) emit(ctx context.Context, events chan<- models.ProgressEvent, stage models.Stage, message string) bool {
	select {
	case events <- models.ProgressEvent{Timestamp: time.Now(), Stage: stage, Message: message}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (o *Orchestrator) complete(ctx context.Context, events chan<- models.ProgressEvent, report models.FinalReport) {
	select {
	case events <- models.ProgressEvent{
		Timestamp: time.Now(),
		Stage:     models.StageCompleted,
		Message:   "Analysis complete.",
		Report:    &report,
	}:
	case <-ctx.Done():
	}
}

func (o *Orchestrator) fail(ctx context.Context, events chan<- models.ProgressEvent, err error) {
	select {
	case events <- models.ProgressEvent{
		Timestamp: time.Now(),
		Stage:     models.StageErrored,
		Message:   "Analysis failed.",
		Err:       err,
	}:
	case <-ctx.Done():
	}
}
