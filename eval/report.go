package eval

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// WriteReport prints per-genre accuracy lines sorted by label, then
// an overall summary. The per-genre similar column is the standalone
// similar share; the overall similar column counts exact hits too.
func WriteReport(w io.Writer, stats Stats) {
	fmt.Fprintf(w, "\nResults by Genre:\n")
	fmt.Fprintln(w, strings.Repeat("-", 70))

	genres := make([]string, 0, len(stats))
	for g := range stats {
		genres = append(genres, g)
	}
	sort.Strings(genres)

	totalCorrect := 0
	totalSimilar := 0
	totalFiles := 0

	for _, g := range genres {
		tally := stats[g]

		exact := percentage(tally.Correct, tally.Total)
		similar := percentage(tally.Similar, tally.Total)

		fmt.Fprintf(w, "%-10s : Exact: %6.2f%% Similar: %6.2f%% (%d/%d/%d correct/similar/total)\n",
			g, exact, similar, tally.Correct, tally.Similar, tally.Total)

		totalCorrect += tally.Correct
		totalSimilar += tally.Similar
		totalFiles += tally.Total
	}

	fmt.Fprintln(w, strings.Repeat("-", 70))

	exactOverall := percentage(totalCorrect, totalFiles)
	similarOverall := percentage(totalCorrect+totalSimilar, totalFiles)

	fmt.Fprintf(w, "%-10s : Exact: %6.2f%% Similar: %6.2f%% (%d/%d/%d correct/similar/total)\n",
		"Overall", exactOverall, similarOverall, totalCorrect, totalSimilar, totalFiles)
}

// percentage avoids dividing by a zero total.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
