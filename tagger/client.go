// Package tagger invokes an external pretrained audio tagger over a
// subprocess boundary and parses its JSON tag listing.
package tagger

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/genrebench/logging"
)

// Tag is one predicted tag with its confidence score.
type Tag struct {
	Name  string  `json:"tag"`
	Score float64 `json:"score"`
}

// Config holds tagger client configuration
type Config struct {
	Command string        `json:"command"` // Tagger executable, assumed in PATH
	Model   string        `json:"model"`   // Pretrained model identifier
	TopN    int           `json:"top_n"`   // Number of tags requested
	Timeout time.Duration `json:"timeout"` // Timeout per invocation
}

// DefaultConfig returns the configuration matching the MTT-trained
// musicnn tagger the evaluation was built around.
func DefaultConfig() *Config {
	return &Config{
		Command: "musicnn-tags",
		Model:   "MTT_musicnn",
		TopN:    10,
		Timeout: 2 * time.Minute,
	}
}

// Client requests tags from the external tagger executable.
type Client struct {
	config *Config
}

// NewClient creates a tagger client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	return &Client{config: config}
}

// TopTags runs the tagger on an audio file and returns its tags in
// descending confidence order, at most TopN of them. The tagger is
// expected to print a JSON document of the form
//
//	{"tags": [{"tag": "rock", "score": 0.92}, ...]}
//
// on stdout.
func (c *Client) TopTags(ctx context.Context, filename string) ([]Tag, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "tagger_client",
		"filename":  filename,
	})

	args := c.buildArgs(filename)

	runCtx, cancel := c.operationContext(ctx)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.config.Command, args...)

	logger.Debug("Running tagger command", logging.Fields{
		"args": strings.Join(args, " "),
	})

	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("tagger failed: %w, stderr: %s", err, string(exitError.Stderr))
		}
		return nil, fmt.Errorf("tagger failed: %w", err)
	}

	tags, err := c.parseTaggerOutput(output)
	if err != nil {
		return nil, err
	}

	logger.Debug("Tagger completed", logging.Fields{
		"tag_count": len(tags),
	})

	return tags, nil
}

// operationContext derives the per-invocation context, applying the
// configured timeout when set.
func (c *Client) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.config.Timeout > 0 {
		return context.WithTimeout(ctx, c.config.Timeout)
	}
	return context.WithCancel(ctx)
}

// buildArgs builds the tagger command line for one file.
func (c *Client) buildArgs(filename string) []string {
	args := []string{
		"--model", c.config.Model,
		"--topn", strconv.Itoa(c.config.TopN),
		"--format", "json",
	}
	args = append(args, filename)
	return args
}

// parseTaggerOutput parses the tagger's JSON tag listing.
func (c *Client) parseTaggerOutput(jsonData []byte) ([]Tag, error) {
	var result struct {
		Tags []struct {
			Tag   string  `json:"tag"`
			Score float64 `json:"score"`
		} `json:"tags"`
	}

	if err := json.Unmarshal(jsonData, &result); err != nil {
		return nil, fmt.Errorf("failed to parse tagger output: %w", err)
	}

	tags := make([]Tag, 0, len(result.Tags))
	for _, t := range result.Tags {
		tags = append(tags, Tag{Name: t.Tag, Score: t.Score})
	}

	// An over-chatty tagger is trimmed to the requested count
	if c.config.TopN > 0 && len(tags) > c.config.TopN {
		tags = tags[:c.config.TopN]
	}

	return tags, nil
}

// ValidateConfig validates the client configuration and checks that
// the tagger executable can be invoked.
func (c *Client) ValidateConfig() error {
	if c.config.Command == "" {
		return fmt.Errorf("tagger command must not be empty")
	}

	if c.config.Model == "" {
		return fmt.Errorf("tagger model must not be empty")
	}

	if c.config.TopN <= 0 {
		return fmt.Errorf("top-n must be positive: %d", c.config.TopN)
	}

	if c.config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %v", c.config.Timeout)
	}

	if err := c.checkTaggerAvailability(); err != nil {
		return fmt.Errorf("tagger not available: %w", err)
	}

	return nil
}

// checkTaggerAvailability checks if the tagger executable runs at all
func (c *Client) checkTaggerAvailability() error {
	cmd := exec.Command(c.config.Command, "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tagger not found at %s: %w", c.config.Command, err)
	}
	return nil
}
