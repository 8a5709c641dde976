package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/kamatgc/AI-startup-analyst/internal/models"
)

// Synthesizer combines all chunk summaries into the final investment memo
// with a single analysis call. Synthesis failure is a degraded but terminal
// outcome: the run still completes, carrying a failed report.
type Synthesizer struct {
	client Invoker
}

// NewSynthesizer creates a synthesizer backed by the given client.
func NewSynthesizer(client Invoker) *Synthesizer {
	return &Synthesizer{client: client}
}

// Synthesize joins the summaries in chunk order (failure placeholders
// included) and asks the service for a memo conforming to the mandated
// template. A response that violates the template takes the same degradation
// path as an analysis failure; the memo is never silently reformatted.
func (s *Synthesizer) Synthesize(ctx context.Context, summaries []models.ChunkSummary) models.FinalReport {
	texts := make([]string, 0, len(summaries))
	for _, summary := range summaries {
		texts = append(texts, summary.Text)
	}
	prompt := BuildSynthesisPrompt(strings.Join(texts, "\n\n"))

	text, err := s.client.Invoke(ctx, prompt, nil)
	if err != nil {
		slog.Error("Memo synthesis failed", "error", err)
		return models.FinalReport{
			Text:   fmt.Sprintf("Memo synthesis failed: %v", err),
			Status: models.SynthesisFailed,
		}
	}

	if err := ValidateReport(text); err != nil {
		slog.Error("Memo violates the mandated template", "error", err)
		return models.FinalReport{
			Text:   fmt.Sprintf("Memo synthesis produced a malformed report: %v", err),
			Status: models.SynthesisFailed,
		}
	}

	return models.FinalReport{
		Text:   strings.TrimSpace(text),
		Status: models.SynthesisOK,
	}
}

// sectionHeadings matches each mandated section as a Markdown heading line.
// The heading level and numbering are left to the model; a section name
// mentioned in body prose does not count as a heading.
var sectionHeadings = func() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(ReportSections))
	for i, section := range ReportSections {
		patterns[i] = regexp.MustCompile(
			`(?mi)^#{1,6}[ \t]*(?:\d+[.)][ \t]*)?` + regexp.QuoteMeta(section) + `[ \t]*:?[ \t]*$`)
	}
	return patterns
}()

// ValidateReport checks the structural contract of a generated memo: all nine
// mandated section headings present, in order, and every scorecard category
// named. Surface formatting beyond that is left to the model.
func ValidateReport(text string) error {
	cursor := 0
	for i, pattern := range sectionHeadings {
		loc := pattern.FindStringIndex(text[cursor:])
		if loc == nil {
			return fmt.Errorf("missing or out-of-order section %d (%s)", i+1, ReportSections[i])
		}
		cursor += loc[1]
	}

	lower := strings.ToLower(text)
	for _, cat := range ScorecardCategories {
		if !strings.Contains(lower, strings.ToLower(cat.Name)) {
			return fmt.Errorf("scorecard is missing category %q", cat.Name)
		}
	}
	return nil
}
