// Package eval walks a labeled dataset, runs a classifier over every
// clip and aggregates per-genre accuracy tallies.
package eval

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/genrebench/classify"
	"github.com/RyanBlaney/genrebench/genre"
	"github.com/RyanBlaney/genrebench/logging"
)

// Tally accumulates prediction outcomes for one true genre.
type Tally struct {
	Correct int `json:"correct"`
	Similar int `json:"similar"`
	Wrong   int `json:"wrong"`
	Total   int `json:"total"`
}

// Stats maps true genre labels to their tallies. An entry exists for
// every genre folder entered, even when no file of it was tallied.
type Stats map[string]*Tally

// RunnerConfig holds evaluation run parameters
type RunnerConfig struct {
	Extension string `json:"extension"` // Clip filename suffix, matched case-sensitively
}

// DefaultRunnerConfig returns the parameters matching the GTZAN-style
// dataset layout.
func DefaultRunnerConfig() *RunnerConfig {
	return &RunnerConfig{
		Extension: ".wav",
	}
}

// Runner drives one classifier over a dataset tree whose immediate
// subdirectories name the true genres.
type Runner struct {
	classifier classify.Classifier
	taxonomy   *genre.Taxonomy
	out        io.Writer
	config     *RunnerConfig
	logger     logging.Logger
}

// NewRunner creates a runner. A nil taxonomy uses the default genre
// groups, a nil writer uses stdout and a nil config uses
// DefaultRunnerConfig.
func NewRunner(classifier classify.Classifier, taxonomy *genre.Taxonomy, out io.Writer, config *RunnerConfig) *Runner {
	if taxonomy == nil {
		taxonomy = genre.DefaultTaxonomy()
	}
	if out == nil {
		out = os.Stdout
	}
	if config == nil {
		config = DefaultRunnerConfig()
	}
	if config.Extension == "" {
		config.Extension = ".wav"
	}

	return &Runner{
		classifier: classifier,
		taxonomy:   taxonomy,
		out:        out,
		config:     config,
		logger: logging.WithFields(logging.Fields{
			"component":  "eval_runner",
			"classifier": classifier.Name(),
		}),
	}
}

// Run evaluates every clip under root. Each immediate subdirectory is
// a true-genre label (lower-cased, unvalidated); files are matched by
// the configured extension. A prediction error is reported and the
// file skipped without touching any counter. Run returns the tallies
// it gathered, partial when the context is canceled mid-run.
func (r *Runner) Run(ctx context.Context, root string) (Stats, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset root %s: %w", root, err)
	}

	r.logger.Debug("Starting evaluation run", logging.Fields{
		"root":      root,
		"extension": r.config.Extension,
	})

	stats := make(Stats)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		trueGenre := strings.ToLower(entry.Name())
		fmt.Fprintf(r.out, "\nProcessing %s folder...\n", trueGenre)
		tally := &Tally{}
		stats[trueGenre] = tally

		genreDir := filepath.Join(root, entry.Name())
		files, err := os.ReadDir(genreDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read genre folder %s: %w", genreDir, err)
		}

		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), r.config.Extension) {
				continue
			}

			if err := ctx.Err(); err != nil {
				return stats, err
			}

			path := filepath.Join(genreDir, file.Name())

			predicted, err := r.classifier.Predict(ctx, path)
			if err != nil {
				fmt.Fprintf(r.out, "Error with %s: %v\n", path, err)
				continue
			}

			tally.Total++

			switch {
			case predicted == trueGenre:
				tally.Correct++
			case r.taxonomy.Similar(predicted, trueGenre):
				tally.Similar++
			default:
				tally.Wrong++
			}

			fmt.Fprintf(r.out, "%s: Predicted %s, Actual %s\n", file.Name(), predicted, trueGenre)
		}

		r.logger.Debug("Finished genre folder", logging.Fields{
			"genre":   trueGenre,
			"correct": tally.Correct,
			"similar": tally.Similar,
			"wrong":   tally.Wrong,
			"total":   tally.Total,
		})
	}

	return stats, nil
}

// Report writes the accuracy report for gathered stats to the
// runner's writer.
func (r *Runner) Report(stats Stats) {
	WriteReport(r.out, stats)
}
