package models

import "time"

// Document represents one uploaded pitch deck for the lifetime of a single
// analysis run. The raw bytes live in the run's workspace; nothing about the
// document survives the run.
type Document struct {
	ID               string
	OriginalFilename string
	SourcePath       string
	PageCount        int
	ReceivedAt       time.Time
}

// PageImage is one rasterized page of the source document. Index is 0-based
// and matches the page order of the source PDF; the sequence handed to the
// batcher must preserve that order.
type PageImage struct {
	Index    int
	Path     string
	MIMEType string
}

// Chunk is a fixed-size, order-preserving window of page images submitted
// together to the analysis service. Chunks partition the full image sequence
// with no gaps and no overlaps; only the last chunk may be short.
type Chunk struct {
	Index  int
	Images []PageImage
}

// SummaryStatus marks whether a per-chunk analysis call produced generated
// content or a failure placeholder.
type SummaryStatus string

const (
	SummaryOK     SummaryStatus = "ok"
	SummaryFailed SummaryStatus = "failed"
)

// ChunkSummary is the analysis result for one chunk. On failure Text holds a
// deterministic placeholder naming the chunk, never generated content. The
// synthesizer receives exactly one summary per chunk, in chunk order,
// regardless of how many chunks failed.
type ChunkSummary struct {
	ChunkIndex int
	Status     SummaryStatus
	Text       string
}

// SynthesisStatus marks the outcome of the final memo synthesis.
type SynthesisStatus string

const (
	SynthesisOK     SynthesisStatus = "ok"
	SynthesisFailed SynthesisStatus = "failed"
)

// FinalReport is the structured investment memo produced once per run. Text
// conforms to the mandated section template when Status is ok; when Status is
// failed it holds a placeholder describing the failure.
type FinalReport struct {
	Text   string
	Status SynthesisStatus
}
