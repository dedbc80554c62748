package sentiment

import (
	"context"
	"errors"
	"math"
	"testing"
)

// mockLexicon returns a fixed lexicon score.
type mockLexicon struct {
	score LexiconScore
	err   error
	calls int
}

func (m *mockLexicon) Score(text string) (LexiconScore, error) {
	m.calls++
	return m.score, m.err
}

// mockContextual returns a fixed sentiment label.
type mockContextual struct {
	label SentimentLabel
	err   error
	calls int
}

func (m *mockContextual) ClassifySentiment(ctx context.Context, text string) (SentimentLabel, error) {
	m.calls++
	return m.label, m.err
}

// mockEmotions returns fixed open-taxonomy scores.
type mockEmotions struct {
	labels []LabelScore
	err    error
	calls  int
}

func (m *mockEmotions) ClassifyEmotions(ctx context.Context, text string) ([]LabelScore, error) {
	m.calls++
	return m.labels, m.err
}

const scorableText = "a text comfortably longer than the short-circuit threshold"

func TestScoreShortCircuitsShortText(t *testing.T) {
	tests := []struct {
		name string
		text string
		mode Mode
	}{
		{name: "empty fast", text: "", mode: ModeFast},
		{name: "empty comprehensive", text: "", mode: ModeComprehensive},
		{name: "under threshold fast", text: "short", mode: ModeFast},
		{name: "under threshold comprehensive", text: "short", mode: ModeComprehensive},
		{name: "whitespace padded", text: "   hi    \n", mode: ModeComprehensive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := &mockLexicon{}
			ctxl := &mockContextual{}
			emo := &mockEmotions{}
			e := NewWithScorers(lex, ctxl, emo, nil)

			got := e.Score(context.Background(), tt.text, tt.mode)

			if got != (Score{}) {
				t.Errorf("Score() = %+v, want zero score", got)
			}
			if lex.calls+ctxl.calls+emo.calls != 0 {
				t.Errorf("models were invoked for short text")
			}
		})
	}
}

func TestScoreFastMode(t *testing.T) {
	lex := &mockLexicon{score: LexiconScore{Polarity: 0.5, Positive: 0.6, Negative: 0.1, Neutral: 0.3}}
	ctxl := &mockContextual{}
	emo := &mockEmotions{}
	e := NewWithScorers(lex, ctxl, emo, nil)

	got := e.Score(context.Background(), scorableText, ModeFast)

	if got.Polarity != 0.5 {
		t.Errorf("polarity = %v, want 0.5", got.Polarity)
	}
	if got.Valence != 0.5 {
		t.Errorf("valence = %v, want lexicon polarity 0.5", got.Valence)
	}
	if got.Arousal != 0.0 {
		t.Errorf("arousal = %v, want 0.0", got.Arousal)
	}
	if got.Confidence != 0.7 {
		t.Errorf("confidence = %v, want fixed 0.7", got.Confidence)
	}
	if got.Emotions != (EmotionVector{}) {
		t.Errorf("emotions = %+v, want zero vector", got.Emotions)
	}
	if ctxl.calls != 0 || emo.calls != 0 {
		t.Errorf("fast mode invoked transformer models")
	}
}

func TestScoreComprehensiveFusion(t *testing.T) {
	lex := &mockLexicon{score: LexiconScore{Polarity: 0.5}}
	ctxl := &mockContextual{label: SentimentLabel{Label: "negative", Confidence: 0.2}}
	emo := &mockEmotions{labels: []LabelScore{
		{Label: "joy", Score: 0.4},
		{Label: "excitement", Score: 0.6},
	}}
	e := NewWithScorers(lex, ctxl, emo, nil)

	got := e.Score(context.Background(), scorableText, ModeComprehensive)

	// 0.5*0.3 + (-0.2)*0.7 = 0.01
	if math.Abs(got.Polarity-0.01) > 1e-9 {
		t.Errorf("polarity = %v, want 0.01", got.Polarity)
	}
	if got.Compound != 0.5 {
		t.Errorf("compound = %v, want lexicon polarity 0.5", got.Compound)
	}
	if got.Emotions.Joy != 0.6 {
		t.Errorf("joy = %v, want max-aggregated 0.6", got.Emotions.Joy)
	}
	if got.Confidence != 0.2 {
		t.Errorf("confidence = %v, want classifier confidence 0.2", got.Confidence)
	}

	want := ProjectAffect(got.Emotions)
	if got.Valence != want.Valence || got.Arousal != want.Arousal {
		t.Errorf("affect = (%v,%v), want (%v,%v)", got.Valence, got.Arousal, want.Valence, want.Arousal)
	}
}

func TestScoreAbsorbsInferenceErrors(t *testing.T) {
	inferErr := errors.New("model exploded")

	tests := []struct {
		name string
		lex  *mockLexicon
		ctxl *mockContextual
		emo  *mockEmotions
	}{
		{
			name: "lexicon failure",
			lex:  &mockLexicon{err: inferErr},
			ctxl: &mockContextual{},
			emo:  &mockEmotions{},
		},
		{
			name: "contextual failure",
			lex:  &mockLexicon{score: LexiconScore{Polarity: 0.9}},
			ctxl: &mockContextual{err: inferErr},
			emo:  &mockEmotions{},
		},
		{
			name: "emotion failure",
			lex:  &mockLexicon{score: LexiconScore{Polarity: 0.9}},
			ctxl: &mockContextual{label: SentimentLabel{Label: "positive", Confidence: 0.8}},
			emo:  &mockEmotions{err: inferErr},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewWithScorers(tt.lex, tt.ctxl, tt.emo, nil)
			got := e.Score(context.Background(), scorableText, ModeComprehensive)
			if got != (Score{}) {
				t.Errorf("Score() = %+v, want zero score on inference failure", got)
			}
		})
	}
}

func TestSentimentLabelPolarity(t *testing.T) {
	tests := []struct {
		name  string
		label SentimentLabel
		want  float64
	}{
		{name: "positive", label: SentimentLabel{Label: "positive", Confidence: 0.8}, want: 0.8},
		{name: "negative", label: SentimentLabel{Label: "negative", Confidence: 0.6}, want: -0.6},
		{name: "neutral", label: SentimentLabel{Label: "neutral", Confidence: 0.9}, want: 0.0},
		{name: "uppercase provider label", label: SentimentLabel{Label: "POSITIVE", Confidence: 0.5}, want: 0.5},
		{name: "unrecognized defaults to neutral", label: SentimentLabel{Label: "label_7", Confidence: 0.9}, want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.label.Polarity(); got != tt.want {
				t.Errorf("Polarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordFreezesScore(t *testing.T) {
	s := Score{Polarity: 0.3, Compound: 0.4, Valence: 0.2, Arousal: -0.1, Confidence: 0.9}
	rec := s.Record("track_abc")

	if rec.TrackID != "track_abc" {
		t.Errorf("TrackID = %q", rec.TrackID)
	}
	if rec.ModelTag != EnsembleTag {
		t.Errorf("ModelTag = %q, want %q", rec.ModelTag, EnsembleTag)
	}
	if rec.Polarity != s.Polarity || rec.Valence != s.Valence || rec.Arousal != s.Arousal {
		t.Errorf("record does not mirror score: %+v", rec)
	}
	if rec.ID.String() == "" || rec.CreatedAt.IsZero() {
		t.Errorf("record missing identity: %+v", rec)
	}

	// A re-score produces a distinct record.
	if s.Record("track_abc").ID == rec.ID {
		t.Errorf("expected fresh record ID per call")
	}
}
