package eval

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeClassifier struct {
	labels map[string]string
	errs   map[string]error
}

func (f *fakeClassifier) Name() string { return "fake" }

func (f *fakeClassifier) Predict(ctx context.Context, filename string) (string, error) {
	base := filepath.Base(filename)
	if err, ok := f.errs[base]; ok {
		return "", err
	}
	if label, ok := f.labels[base]; ok {
		return label, nil
	}
	return "unknown", nil
}

func buildDataset(t *testing.T, layout map[string][]string) string {
	t.Helper()

	root := t.TempDir()
	for dir, files := range layout {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
		for _, name := range files {
			if err := os.WriteFile(filepath.Join(root, dir, name), []byte("RIFF"), 0o644); err != nil {
				t.Fatalf("write %s: %v", name, err)
			}
		}
	}
	return root
}

func TestRunTallies(t *testing.T) {
	root := buildDataset(t, map[string][]string{
		"classical": {"a.wav", "b.wav"},
		"pop":       {"c.wav"},
	})

	classifier := &fakeClassifier{labels: map[string]string{
		"a.wav": "classical", // exact
		"b.wav": "opera",     // same group
		"c.wav": "metal",     // different group
	}}

	runner := NewRunner(classifier, nil, &bytes.Buffer{}, nil)
	stats, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := map[string]Tally{
		"classical": {Correct: 1, Similar: 1, Wrong: 0, Total: 2},
		"pop":       {Correct: 0, Similar: 0, Wrong: 1, Total: 1},
	}
	if len(stats) != len(want) {
		t.Fatalf("got %d genres, want %d", len(stats), len(want))
	}
	for g, wantTally := range want {
		got, ok := stats[g]
		if !ok {
			t.Fatalf("missing genre %q", g)
		}
		if *got != wantTally {
			t.Errorf("%s tally = %+v, want %+v", g, *got, wantTally)
		}
		if got.Correct+got.Similar+got.Wrong != got.Total {
			t.Errorf("%s tally does not sum to total: %+v", g, *got)
		}
	}
}

func TestRunProgressOutput(t *testing.T) {
	root := buildDataset(t, map[string][]string{
		"classical": {"a.wav", "b.wav"},
	})

	classifier := &fakeClassifier{labels: map[string]string{
		"a.wav": "classical",
		"b.wav": "opera",
	}}

	var out bytes.Buffer
	runner := NewRunner(classifier, nil, &out, nil)
	if _, err := runner.Run(context.Background(), root); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, want := range []string{
		"\nProcessing classical folder...\n",
		"a.wav: Predicted classical, Actual classical\n",
		"b.wav: Predicted opera, Actual classical\n",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunSkipsFailedFiles(t *testing.T) {
	root := buildDataset(t, map[string][]string{
		"classical": {"a.wav", "bad.wav"},
	})

	classifier := &fakeClassifier{
		labels: map[string]string{"a.wav": "classical"},
		errs:   map[string]error{"bad.wav": errors.New("decode failed: boom")},
	}

	var out bytes.Buffer
	runner := NewRunner(classifier, nil, &out, nil)
	stats, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Failed files touch no counter, not even total
	if got := *stats["classical"]; got != (Tally{Correct: 1, Total: 1}) {
		t.Errorf("tally = %+v, want 1 correct of 1 total", got)
	}

	wantLine := "Error with " + filepath.Join(root, "classical", "bad.wav") + ": decode failed: boom\n"
	if !strings.Contains(out.String(), wantLine) {
		t.Errorf("output missing %q:\n%s", wantLine, out.String())
	}
	if strings.Contains(out.String(), "bad.wav: Predicted") {
		t.Error("failed file has a progress line")
	}
}

func TestRunExtensionFilter(t *testing.T) {
	root := buildDataset(t, map[string][]string{
		"jazz": {"x.wav", "y.WAV", "z.txt"},
	})

	classifier := &fakeClassifier{labels: map[string]string{
		"x.wav": "jazz", "y.WAV": "jazz", "z.txt": "jazz",
	}}

	var out bytes.Buffer
	runner := NewRunner(classifier, nil, &out, nil)
	stats, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := stats["jazz"].Total; got != 1 {
		t.Errorf("total = %d, want 1 (.WAV and .txt skipped)", got)
	}
	if strings.Contains(out.String(), "y.WAV") {
		t.Error("case-mismatched extension was processed")
	}
}

func TestRunCustomExtension(t *testing.T) {
	root := buildDataset(t, map[string][]string{
		"jazz": {"x.au", "y.wav"},
	})

	classifier := &fakeClassifier{labels: map[string]string{
		"x.au": "jazz", "y.wav": "jazz",
	}}

	runner := NewRunner(classifier, nil, &bytes.Buffer{}, &RunnerConfig{Extension: ".au"})
	stats, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := stats["jazz"].Total; got != 1 {
		t.Errorf("total = %d, want 1", got)
	}
}

func TestRunFoldsGenreCase(t *testing.T) {
	root := buildDataset(t, map[string][]string{
		"Jazz": {"x.wav"},
	})

	classifier := &fakeClassifier{labels: map[string]string{"x.wav": "jazz"}}

	var out bytes.Buffer
	runner := NewRunner(classifier, nil, &out, nil)
	stats, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	tally, ok := stats["jazz"]
	if !ok {
		t.Fatalf("stats keyed %v, want lower-cased genre", stats)
	}
	if tally.Correct != 1 {
		t.Errorf("tally = %+v", *tally)
	}
	if !strings.Contains(out.String(), "\nProcessing jazz folder...\n") {
		t.Error("progress line not lower-cased")
	}
}

func TestRunEmptyGenreFolder(t *testing.T) {
	root := buildDataset(t, map[string][]string{
		"blues": {},
	})

	runner := NewRunner(&fakeClassifier{}, nil, &bytes.Buffer{}, nil)
	stats, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	tally, ok := stats["blues"]
	if !ok {
		t.Fatal("entered folder has no stats entry")
	}
	if *tally != (Tally{}) {
		t.Errorf("tally = %+v, want zeros", *tally)
	}
}

func TestRunIgnoresRootFiles(t *testing.T) {
	root := buildDataset(t, map[string][]string{
		"rock": {"x.wav"},
	})
	if err := os.WriteFile(filepath.Join(root, "README.txt"), []byte("notes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	classifier := &fakeClassifier{labels: map[string]string{"x.wav": "rock"}}
	runner := NewRunner(classifier, nil, &bytes.Buffer{}, nil)
	stats, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(stats) != 1 {
		t.Errorf("got %d genres, want 1: %v", len(stats), stats)
	}
}

func TestRunMissingRoot(t *testing.T) {
	runner := NewRunner(&fakeClassifier{}, nil, &bytes.Buffer{}, nil)
	if _, err := runner.Run(context.Background(), filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error")
	}
}

func TestRunCanceledContext(t *testing.T) {
	root := buildDataset(t, map[string][]string{
		"rock": {"x.wav"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(&fakeClassifier{}, nil, &bytes.Buffer{}, nil)
	stats, err := runner.Run(ctx, root)
	if err == nil {
		t.Fatal("expected context error")
	}
	if stats == nil {
		t.Error("partial stats discarded")
	}
}
