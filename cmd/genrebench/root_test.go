package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootSubcommands(t *testing.T) {
	cmd := newRootCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Contains(t, names, "lstm")
	assert.Contains(t, names, "tagger")
	assert.Contains(t, names, "groups")
}

func TestRootFlagDefaults(t *testing.T) {
	cmd := newRootCommand()

	assert.Equal(t, "error", cmd.PersistentFlags().Lookup("log-level").DefValue)
	assert.Equal(t, ".wav", cmd.PersistentFlags().Lookup("extension").DefValue)
}

func TestLSTMFlagDefaults(t *testing.T) {
	cmd := newLSTMCommand()

	assert.Equal(t, "./weights/model.json", cmd.Flags().Lookup("model").DefValue)
	assert.Equal(t, "./weights/model_weights.bin", cmd.Flags().Lookup("weights").DefValue)
}

func TestTaggerFlagDefaults(t *testing.T) {
	cmd := newTaggerCommand()

	assert.Equal(t, "musicnn-tags", cmd.Flags().Lookup("command").DefValue)
	assert.Equal(t, "MTT_musicnn", cmd.Flags().Lookup("tagger-model").DefValue)
	assert.Equal(t, "10", cmd.Flags().Lookup("top-n").DefValue)
}

func TestDatasetRoot(t *testing.T) {
	newRootCommand()

	assert.Equal(t, "/data/clips", datasetRoot([]string{"/data/clips"}))
	assert.Equal(t, "./genres_original", datasetRoot(nil))
}

func TestGroupsCommand(t *testing.T) {
	cmd := newRootCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"groups"})

	require.NoError(t, cmd.Execute())

	for _, want := range []string{"rock", "hard rock", "electronic", "hip hop", "banjo"} {
		assert.Contains(t, out.String(), want)
	}
}

func TestLSTMCommandMissingModel(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	missing := filepath.Join(t.TempDir(), "absent.json")
	cmd.SetArgs([]string{"lstm", "--model", missing, "--weights", missing, t.TempDir()})

	require.Error(t, cmd.Execute())
}
