package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/kamatgc/AI-startup-analyst/internal/gemini"
	"github.com/kamatgc/AI-startup-analyst/internal/models"
)

// Invoker performs one call against the generative analysis service. It is
// satisfied by *gemini.Client.
type Invoker interface {
	Invoke(ctx context.Context, prompt string, attachments []gemini.Attachment) (string, error)
}

// Summarizer produces one summary per chunk. A failed analysis call never
// aborts the pipeline: it yields a summary with a deterministic placeholder
// text instead, so the synthesizer always receives exactly one entry per
// chunk. This is the run's core partial-failure policy.
type Summarizer struct {
	client Invoker
}

// NewSummarizer creates a chunk summarizer backed by the given client.
func NewSummarizer(client Invoker) *Summarizer {
	return &Summarizer{client: client}
}

// Summarize analyzes one chunk with all of its page images attached.
func (s *Summarizer) Summarize(ctx context.Context, chunk models.Chunk, totalChunks int) models.ChunkSummary {
	logCtx := slog.With("chunk", chunk.Index+1, "totalChunks", totalChunks)

	attachments, err := loadAttachments(chunk.Images)
	if err != nil {
		logCtx.Error("Failed to load chunk attachments", "error", err)
		return failedSummary(chunk.Index, totalChunks, err)
	}

	prompt := BuildChunkPrompt(chunk.Index, totalChunks)
	text, err := s.client.Invoke(ctx, prompt, attachments)
	if err != nil {
		logCtx.Warn("Chunk analysis failed, continuing with placeholder.", "error", err)
		return failedSummary(chunk.Index, totalChunks, err)
	}

	return models.ChunkSummary{
		ChunkIndex: chunk.Index,
		Status:     models.SummaryOK,
		Text:       strings.TrimSpace(text),
	}
}

func failedSummary(chunkIndex, totalChunks int, err error) models.ChunkSummary {
	return models.ChunkSummary{
		ChunkIndex: chunkIndex,
		Status:     models.SummaryFailed,
		Text:       fmt.Sprintf("[Chunk %d of %d unavailable: %v]", chunkIndex+1, totalChunks, err),
	}
}

func loadAttachments(images []models.PageImage) ([]gemini.Attachment, error) {
	attachments := make([]gemini.Attachment, 0, len(images))
	for _, img := range images {
		data, err := os.ReadFile(img.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read page image %d: %w", img.Index+1, err)
		}
		attachments = append(attachments, gemini.Attachment{
			MIMEType: img.MIMEType,
			Data:     data,
		})
	}
	return attachments, nil
}
