package classify

import (
	"context"
	"strings"

	"github.com/RyanBlaney/genrebench/genre"
	"github.com/RyanBlaney/genrebench/logging"
	"github.com/RyanBlaney/genrebench/tagger"
)

// TagSource produces descriptive tags for an audio file in descending
// confidence order.
type TagSource interface {
	TopTags(ctx context.Context, filename string) ([]tagger.Tag, error)
}

// TagClassifier maps the tag listing of a general-purpose audio
// tagger onto the genre taxonomy: the first tag belonging to any
// group wins.
type TagClassifier struct {
	source   TagSource
	taxonomy *genre.Taxonomy
	logger   logging.Logger
}

// NewTagClassifier wires a tag source to a taxonomy. A nil taxonomy
// uses the default genre groups.
func NewTagClassifier(source TagSource, taxonomy *genre.Taxonomy) *TagClassifier {
	if taxonomy == nil {
		taxonomy = genre.DefaultTaxonomy()
	}
	return &TagClassifier{
		source:   source,
		taxonomy: taxonomy,
		logger: logging.WithFields(logging.Fields{
			"component": "tag_classifier",
		}),
	}
}

// Name identifies the backend.
func (c *TagClassifier) Name() string {
	return "tagger"
}

// Predict scans the file's tags in order and returns the first one
// that is a member of any taxonomy group, lower-cased. The returned
// label is the matching tag itself, not its group name. When no tag
// matches, Predict returns Unknown.
func (c *TagClassifier) Predict(ctx context.Context, filename string) (string, error) {
	tags, err := c.source.TopTags(ctx, filename)
	if err != nil {
		return "", err
	}

	for _, tag := range tags {
		name := strings.ToLower(tag.Name)
		if c.taxonomy.Contains(name) {
			c.logger.Debug("Matched tag", logging.Fields{
				"filename": filename,
				"tag":      name,
				"score":    tag.Score,
			})
			return name, nil
		}
	}

	return Unknown, nil
}
