package synthesis

import (
	"fmt"
	"strings"

	"github.com/ternarybob/verdict/internal/models"
)

const summaryMaxWords = 40

// buildExecutiveSummary renders the fixed four-line synopsis: one short line
// per specialist followed by the final recommendation line.
func buildExecutiveSummary(macro, technical, sentiment *models.SpecialistResult, outlook models.Outlook, avgConfidence float64) string {
	return fmt.Sprintf(
		"Technical analysis summary: %s\nMacro analyst summary: %s\nSentiment analyst summary: %s\nFinal: Outlook=%s. Recommendation=%s (position=%s; confidence=%v).",
		shortSummary(resultSummary(technical)),
		shortSummary(resultSummary(macro)),
		shortSummary(resultSummary(sentiment)),
		outlook,
		actionForOutlook(outlook),
		positionForConfidence(avgConfidence),
		roundTo(avgConfidence, 2),
	)
}

// shortSummary takes the first sentence of the text, truncated to
// summaryMaxWords words with a trailing ellipsis when longer.
func shortSummary(text string) string {
	if text == "" {
		return ""
	}
	first := strings.TrimSpace(strings.SplitN(text, ".", 2)[0])
	words := strings.Fields(first)
	if len(words) <= summaryMaxWords {
		if strings.HasSuffix(first, ".") {
			return first
		}
		return first + "."
	}
	return strings.Join(words[:summaryMaxWords], " ") + "..."
}
