package models

import (
	"fmt"
	"time"
)

// Stage identifies where in the pipeline a progress event was emitted. The
// orchestrator only ever moves forward through these stages.
type Stage string

const (
	StageReceived     Stage = "received"
	StageRendering    Stage = "rendering"
	StageBatching     Stage = "batching"
	StageSummarizing  Stage = "summarizing"
	StageSynthesizing Stage = "synthesizing"
	StageCompleted    Stage = "completed"
	StageErrored      Stage = "errored"
)

// ProgressEvent is one append-only entry of a run's progress stream. Exactly
// one terminal event is emitted per run: StageCompleted carrying the final
// report, or StageErrored carrying the terminal error.
type ProgressEvent struct {
	Timestamp time.Time
	Stage     Stage
	Message   string
	Report    *FinalReport
	Err       error
}

// Terminal reports whether this event ends the stream.
func (e ProgressEvent) Terminal() bool {
	return e.Stage == StageCompleted || e.Stage == StageErrored
}

// StatusLine renders the event message the way the live UI expects it,
// prefixed with a wall-clock timestamp.
func (e ProgressEvent) StatusLine() string {
	return fmt.Sprintf("[%s] %s", e.Timestamp.Format("15:04:05"), e.Message)
}

// StatusRecord is the wire shape of one newline-delimited stream record.
// Progress records carry only Status; the terminal record carries either Memo
// or Error in addition.
type StatusRecord struct {
	Status string `json:"status,omitempty"`
	Memo   string `json:"memo,omitempty"`
	Error  string `json:"error,omitempty"`
}
