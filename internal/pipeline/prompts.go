package pipeline

import (
	"fmt"
	"strings"
)

// --- Chunk Analysis Prompts ---

const chunkPromptTemplate = `You are an expert VC analyst. Analyze the startup pitch deck pages attached below. This is chunk %d of %d of the full deck.

Summarize everything material an investor would care about on these pages: the company and what it does, the team, the market and competition, the product, traction and metrics, financials, and any fundraising terms. Quote concrete numbers exactly as they appear. If a page carries no investor-relevant content, say nothing about it. Return plain Markdown text with no preamble and no code fences.`

// BuildChunkPrompt creates the batch-analysis prompt for one chunk,
// referencing its position in the full deck.
func BuildChunkPrompt(chunkIndex, totalChunks int) string {
	return fmt.Sprintf(chunkPromptTemplate, chunkIndex+1, totalChunks)
}

// --- Synthesis Prompts ---

// ScorecardCategory is one row of the mandated scorecard. Weights sum to 100.
type ScorecardCategory struct {
	Name   string
	Weight int
}

// ScorecardCategories is the fixed category set of the final memo, in
// mandated order.
var ScorecardCategories = []ScorecardCategory{
	{Name: "Team", Weight: 30},
	{Name: "Product", Weight: 15},
	{Name: "Market", Weight: 20},
	{Name: "Traction", Weight: 20},
	{Name: "Financials", Weight: 10},
	{Name: "M&A/Exit Potential", Weight: 5},
}

// ReportSections is the fixed ordered set of top-level memo headings. Every
// generated memo must contain all nine, numbered, in this order.
var ReportSections = []string{
	"Company Overview",
	"Team",
	"Market",
	"Product",
	"Traction",
	"Financials",
	"Investment Terms",
	"Scorecard",
	"Final Recommendation",
}

// Verdict thresholds applied to the confidence score.
const (
	VerdictGo          = "Go"
	VerdictConditional = "Conditional"
	VerdictNoGo        = "No-Go"
)

// VerdictFor maps a confidence score in [0,100] to the three-way verdict:
// >=70 Go, 51-69 Conditional, otherwise No-Go.
func VerdictFor(confidence int) string {
	switch {
	case confidence >= 70:
		return VerdictGo
	case confidence >= 51:
		return VerdictConditional
	default:
		return VerdictNoGo
	}
}

const synthesisPromptHeader = `You are a professional VC analyst. Based on the chunk summaries below, generate a single, clean investment memo in Markdown using the exact structure that follows. Do not add, remove, rename, or reorder sections. Do not wrap the output in code fences.

Required structure, with these nine numbered headings in this order:
`

const synthesisPromptScorecard = `
The Scorecard section must contain a Markdown table with exactly these six categories and weights, in this order:

| Category | Weight | Score (1-10) | Weighted Score | Justification |
|---|---|---|---|---|
%s
Score each category from 1 to 10, compute each weighted score as weight * score / 10, and sum the weighted scores.

The Final Recommendation section must state a confidence score as an integer percentage between 0 and 100, and a verdict derived from it using exactly this mapping: 70 or higher is "Go", 51 to 69 is "Conditional", below that is "No-Go".

Chunk summaries follow. Summaries marked as unavailable reflect pages that could not be analyzed; work with what remains and lower the confidence score accordingly.

---

%s`

// BuildSynthesisPrompt embeds the combined chunk summaries into the memo
// synthesis prompt that mandates the report template.
func BuildSynthesisPrompt(combinedSummaries string) string {
	var b strings.Builder
	b.WriteString(synthesisPromptHeader)
	for i, section := range ReportSections {
		fmt.Fprintf(&b, "## %d. %s\n", i+1, section)
	}

	var rows strings.Builder
	for _, cat := range ScorecardCategories {
		fmt.Fprintf(&rows, "| %s | %d | ... | ... | ... |\n", cat.Name, cat.Weight)
	}
	fmt.Fprintf(&b, synthesisPromptScorecard, rows.String(), combinedSummaries)
	return b.String()
}
