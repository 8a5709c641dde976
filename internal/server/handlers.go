package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kamatgc/AI-startup-analyst/internal/models"
)

// handleAnalyze accepts one PDF upload and streams progress records until the
// run ends. Every run produces exactly one terminal record: a memo or an
// error. If the caller disconnects mid-stream, the request context cancels
// the run and no further records are written.
func (s *Server) handleAnalyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.StatusRecord{Error: "a PDF upload named 'file' is required"})
		return
	}
	upload, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.StatusRecord{Error: "could not read upload"})
		return
	}
	defer upload.Close()

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Writer.WriteHeader(http.StatusOK)

	ctx := c.Request.Context()
	events := s.orchestrator.Run(ctx, fileHeader.Filename, upload)

	encoder := json.NewEncoder(c.Writer)
	for event := range events {
		if err := encoder.Encode(recordFor(event)); err != nil {
			// Writer is gone; the context cancellation stops the run.
			slog.Info("Stream writer closed, abandoning run.", "error", err)
			return
		}
		c.Writer.Flush()
	}
}

// recordFor maps a pipeline event to its wire shape. A completed run with a
// failed synthesis surfaces as an error record; the caller never receives
// silent truncation.
func recordFor(event models.ProgressEvent) models.StatusRecord {
	switch {
	case event.Stage == models.StageErrored:
		return models.StatusRecord{Error: event.Err.Error()}
	case event.Stage == models.StageCompleted && event.Report.Status == models.SynthesisOK:
		return models.StatusRecord{Status: event.Message, Memo: event.Report.Text}
	case event.Stage == models.StageCompleted:
		return models.StatusRecord{Error: event.Report.Text}
	default:
		return models.StatusRecord{Status: event.StatusLine()}
	}
}
