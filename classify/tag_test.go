package classify

import (
	"context"
	"fmt"
	"testing"

	"github.com/RyanBlaney/genrebench/tagger"
)

type fakeTagSource struct {
	tags []tagger.Tag
	err  error
}

func (f *fakeTagSource) TopTags(ctx context.Context, filename string) ([]tagger.Tag, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tags, nil
}

func TestTagPredictFirstMatch(t *testing.T) {
	source := &fakeTagSource{tags: []tagger.Tag{
		{Name: "guitar", Score: 0.95},
		{Name: "Hard Rock", Score: 0.80},
		{Name: "pop", Score: 0.70},
	}}

	label, err := NewTagClassifier(source, nil).Predict(context.Background(), "clip.wav")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if label != "hard rock" {
		t.Errorf("label = %q, want %q", label, "hard rock")
	}
}

func TestTagPredictUnknown(t *testing.T) {
	source := &fakeTagSource{tags: []tagger.Tag{
		{Name: "guitar", Score: 0.95},
		{Name: "vocals", Score: 0.80},
		{Name: "loud", Score: 0.70},
	}}

	label, err := NewTagClassifier(source, nil).Predict(context.Background(), "clip.wav")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if label != Unknown {
		t.Errorf("label = %q, want %q", label, Unknown)
	}
}

// Group names are not members of their own synonym sets, so a bare
// "hiphop" tag falls through while "hip hop" matches.
func TestTagPredictGroupNameIsNotMember(t *testing.T) {
	classifier := NewTagClassifier(nil, nil)

	tests := []struct {
		tag  string
		want string
	}{
		{"hiphop", Unknown},
		{"hip hop", "hip hop"},
	}

	for _, tt := range tests {
		classifier.source = &fakeTagSource{tags: []tagger.Tag{{Name: tt.tag, Score: 0.9}}}

		label, err := classifier.Predict(context.Background(), "clip.wav")
		if err != nil {
			t.Fatalf("Predict(%q): %v", tt.tag, err)
		}
		if label != tt.want {
			t.Errorf("Predict(%q) = %q, want %q", tt.tag, label, tt.want)
		}
	}
}

func TestTagPredictNoTags(t *testing.T) {
	label, err := NewTagClassifier(&fakeTagSource{}, nil).Predict(context.Background(), "clip.wav")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if label != Unknown {
		t.Errorf("label = %q, want %q", label, Unknown)
	}
}

func TestTagPredictSourceError(t *testing.T) {
	source := &fakeTagSource{err: fmt.Errorf("tagger failed: exit status 3")}

	label, err := NewTagClassifier(source, nil).Predict(context.Background(), "clip.wav")
	if err == nil {
		t.Fatal("expected error")
	}
	if label != "" {
		t.Errorf("label = %q, want empty on error", label)
	}
}

func TestTagClassifierName(t *testing.T) {
	if got := NewTagClassifier(nil, nil).Name(); got != "tagger" {
		t.Errorf("Name = %q", got)
	}
}
