package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamatgc/AI-startup-analyst/internal/models"
)

// validMemo builds the smallest memo that satisfies the mandated template:
// all nine numbered headings in order plus a scorecard row per category.
func validMemo() string {
	var b strings.Builder
	for i, section := range ReportSections {
		fmt.Fprintf(&b, "## %d. %s\n\nSome analysis.\n\n", i+1, section)
		if section == "Scorecard" {
			for _, cat := range ScorecardCategories {
				fmt.Fprintf(&b, "| %s | %d | 7 | %d | solid |\n", cat.Name, cat.Weight, cat.Weight*7/10)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func summariesOf(texts ...string) []models.ChunkSummary {
	summaries := make([]models.ChunkSummary, len(texts))
	for i, text := range texts {
		summaries[i] = models.ChunkSummary{ChunkIndex: i, Status: models.SummaryOK, Text: text}
	}
	return summaries
}

func TestSynthesizeSuccess(t *testing.T) {
	memo := validMemo()
	invoker := &fakeInvoker{fn: func(int, string) (string, error) {
		return memo, nil
	}}

	report := NewSynthesizer(invoker).Synthesize(context.Background(), summariesOf("first", "second"))

	assert.Equal(t, models.SynthesisOK, report.Status)
	assert.Equal(t, strings.TrimSpace(memo), report.Text)
	require.Len(t, invoker.prompts, 1)
	assert.Contains(t, invoker.prompts[0], "first\n\nsecond", "summaries must be joined in chunk order")
	assert.Contains(t, invoker.prompts[0], "| Team | 30 |")
	assert.Contains(t, invoker.prompts[0], "| M&A/Exit Potential | 5 |")
}

func TestSynthesizeServiceFailure(t *testing.T) {
	invoker := &fakeInvoker{fn: func(int, string) (string, error) {
		return "", errors.New("out of quota")
	}}

	report := NewSynthesizer(invoker).Synthesize(context.Background(), summariesOf("only"))

	assert.Equal(t, models.SynthesisFailed, report.Status)
	assert.Contains(t, report.Text, "Memo synthesis failed")
	assert.Contains(t, report.Text, "out of quota")
}

func TestSynthesizeRejectsMalformedMemo(t *testing.T) {
	invoker := &fakeInvoker{fn: func(int, string) (string, error) {
		return "## 1. Company Overview\n\nThat is all.", nil
	}}

	report := NewSynthesizer(invoker).Synthesize(context.Background(), summariesOf("only"))

	assert.Equal(t, models.SynthesisFailed, report.Status)
	assert.Contains(t, report.Text, "malformed report")
}

func TestValidateReport(t *testing.T) {
	t.Run("valid memo passes", func(t *testing.T) {
		require.NoError(t, ValidateReport(validMemo()))
	})

	t.Run("missing section", func(t *testing.T) {
		memo := strings.Replace(validMemo(), "Investment Terms", "Deal Terms", 1)
		err := ValidateReport(memo)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Investment Terms")
	})

	t.Run("out of order sections", func(t *testing.T) {
		memo := validMemo()
		memo = strings.Replace(memo, "## 2. Team", "## 2. Market", 1)
		memo = strings.Replace(memo, "## 3. Market", "## 3. Team", 1)
		require.Error(t, ValidateReport(memo))
	})

	t.Run("section names in prose do not satisfy headings", func(t *testing.T) {
		memo := strings.Replace(validMemo(),
			"## 2. Team\n", "The team is strong and the market is large.\n", 1)
		err := ValidateReport(memo)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Team")
	})

	t.Run("prose mention before a heading does not break ordering", func(t *testing.T) {
		memo := strings.Replace(validMemo(),
			"## 1. Company Overview\n\nSome analysis.",
			"## 1. Company Overview\n\nA team of twelve serving the payments market.", 1)
		require.NoError(t, ValidateReport(memo))
	})

	t.Run("heading level and numbering are flexible", func(t *testing.T) {
		memo := validMemo()
		memo = strings.Replace(memo, "## 2. Team", "### Team", 1)
		memo = strings.Replace(memo, "## 5. Traction", "## 5) Traction:", 1)
		require.NoError(t, ValidateReport(memo))
	})

	t.Run("missing scorecard category", func(t *testing.T) {
		memo := strings.ReplaceAll(validMemo(), "M&A/Exit Potential", "Exit")
		err := ValidateReport(memo)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "M&A/Exit Potential")
	})
}

func TestScorecardWeightsSumToOneHundred(t *testing.T) {
	total := 0
	for _, cat := range ScorecardCategories {
		total += cat.Weight
	}
	assert.Equal(t, 100, total)
}

func TestVerdictFor(t *testing.T) {
	tests := []struct {
		confidence int
		want       string
	}{
		{confidence: 95, want: VerdictGo},
		{confidence: 70, want: VerdictGo},
		{confidence: 69, want: VerdictConditional},
		{confidence: 60, want: VerdictConditional},
		{confidence: 51, want: VerdictConditional},
		{confidence: 50, want: VerdictNoGo},
		{confidence: 12, want: VerdictNoGo},
		{confidence: 0, want: VerdictNoGo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VerdictFor(tt.confidence), "confidence %d", tt.confidence)
	}
}
