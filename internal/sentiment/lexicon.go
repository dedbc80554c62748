package sentiment

import (
	"fmt"

	prose "github.com/tsawler/prose/v3"
)

// LexiconScore is the rule-based scorer's output: an aggregate polarity
// plus the positive/negative/neutral probability breakdown.
type LexiconScore struct {
	Polarity float64
	Positive float64
	Negative float64
	Neutral  float64
}

// LexiconScorer produces a deterministic baseline polarity from lexicon
// rules. It is the fast path of the ensemble and carries no model-server
// dependency.
type LexiconScorer struct {
	analyzer *prose.SentimentAnalyzer
}

// NewLexiconScorer builds the rule-based scorer. Lexicon data ships with
// the library, so construction cannot fail at runtime.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{
		analyzer: prose.NewSentimentAnalyzer(prose.English, prose.DefaultSentimentConfig()),
	}
}

// Score analyzes text and returns its lexicon sentiment. Text longer than
// the model context window is truncated, not rejected.
func (s *LexiconScorer) Score(text string) (LexiconScore, error) {
	doc, err := prose.NewDocument(truncateContext(text), prose.WithExtraction(false))
	if err != nil {
		return LexiconScore{}, fmt.Errorf("lexicon: parsing document: %w", err)
	}

	score := s.analyzer.AnalyzeDocument(doc)
	return LexiconScore{
		Polarity: clip(score.Polarity, -1, 1),
		Positive: clip(score.Scores[prose.Positive]+score.Scores[prose.StrongPositive], 0, 1),
		Negative: clip(score.Scores[prose.Negative]+score.Scores[prose.StrongNegative], 0, 1),
		Neutral:  clip(score.Scores[prose.Neutral], 0, 1),
	}, nil
}
