// Package classify adapts the two pretrained genre backends, the
// sequence model and the external tagger, behind a single per-file
// prediction interface.
package classify

import "context"

// Unknown is returned by the tag backend when none of the top tags
// belong to any taxonomy group.
const Unknown = "unknown"

// Classifier predicts a lower-cased genre label for one audio file.
type Classifier interface {
	Name() string
	Predict(ctx context.Context, filename string) (string, error)
}

// defaultGenreLabels is the closed label set the genre model was
// trained on, in output-unit order.
var defaultGenreLabels = []string{
	"classical",
	"country",
	"disco",
	"hiphop",
	"jazz",
	"metal",
	"pop",
	"reggae",
}

// DefaultGenreLabels returns the label set used when a model topology
// does not carry its own.
func DefaultGenreLabels() []string {
	labels := make([]string, len(defaultGenreLabels))
	copy(labels, defaultGenreLabels)
	return labels
}
