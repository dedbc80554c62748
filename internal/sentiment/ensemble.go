package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Mode selects how much of the ensemble runs for one text.
type Mode string

const (
	// ModeFast runs only the lexicon scorer.
	ModeFast Mode = "fast"
	// ModeComprehensive runs all three models and fuses their outputs.
	ModeComprehensive Mode = "comprehensive"
)

// minScoreLength is the short-circuit threshold: cleaned text shorter
// than this skips all model invocation and yields the zero score.
const minScoreLength = 10

// Fast-mode constants: the lexicon baseline has no per-call confidence
// signal, so fast results carry a fixed one.
const fastModeConfidence = 0.7

// Fusion weights for comprehensive mode.
const (
	lexiconWeight    = 0.3
	contextualWeight = 0.7
)

// Score is one composite mood signal for a single text.
type Score struct {
	Polarity   float64       `json:"polarity"`
	Compound   float64       `json:"compound"` // lexicon aggregate before fusion
	Positive   float64       `json:"positive"`
	Negative   float64       `json:"negative"`
	Neutral    float64       `json:"neutral"`
	Emotions   EmotionVector `json:"emotions"`
	Valence    float64       `json:"valence"`
	Arousal    float64       `json:"arousal"`
	Confidence float64       `json:"confidence"`
}

// LexiconModel is the rule-based polarity capability.
type LexiconModel interface {
	Score(text string) (LexiconScore, error)
}

// ContextualScorer is the transformer sentiment capability.
type ContextualScorer interface {
	ClassifySentiment(ctx context.Context, text string) (SentimentLabel, error)
}

// EmotionScorer is the multi-label emotion classification capability.
type EmotionScorer interface {
	ClassifyEmotions(ctx context.Context, text string) ([]LabelScore, error)
}

// Config holds ensemble construction parameters.
type Config struct {
	InferenceURL   string
	SentimentModel string
	EmotionModel   string
}

// Default model names, matching the models the inference sidecar loads
// when unconfigured.
const (
	DefaultSentimentModel = "cardiffnlp/twitter-roberta-base-sentiment"
	DefaultEmotionModel   = "joeddav/distilbert-base-uncased-go-emotions-student"
)

// LoadConfig reads ensemble configuration from environment variables,
// falling back to the default local sidecar and model names.
func LoadConfig() Config {
	cfg := Config{
		InferenceURL:   os.Getenv("INFERENCE_URL"),
		SentimentModel: os.Getenv("SENTIMENT_MODEL"),
		EmotionModel:   os.Getenv("EMOTION_MODEL"),
	}
	if cfg.SentimentModel == "" {
		cfg.SentimentModel = DefaultSentimentModel
	}
	if cfg.EmotionModel == "" {
		cfg.EmotionModel = DefaultEmotionModel
	}
	return cfg
}

// Ensemble fuses the three scoring models into one composite score per
// text. Construct it once at startup; concurrent Score calls are safe
// after construction.
type Ensemble struct {
	lexicon    LexiconModel
	contextual ContextualScorer
	emotions   EmotionScorer
	logger     *slog.Logger
}

// New constructs the ensemble and verifies the inference sidecar is up.
// A failure here is fatal: there is no partial-ensemble degraded mode.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Ensemble, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client := NewInferenceClient(cfg.InferenceURL, cfg.SentimentModel, cfg.EmotionModel)
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("loading sentiment models: %w", err)
	}

	return &Ensemble{
		lexicon:    NewLexiconScorer(),
		contextual: client,
		emotions:   client,
		logger:     logger,
	}, nil
}

// NewWithScorers constructs an ensemble from explicit capabilities.
// Used by tests and by callers that substitute model backends.
func NewWithScorers(lexicon LexiconModel, contextual ContextualScorer, emotions EmotionScorer, logger *slog.Logger) *Ensemble {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ensemble{
		lexicon:    lexicon,
		contextual: contextual,
		emotions:   emotions,
		logger:     logger,
	}
}

var (
	sharedOnce     sync.Once
	sharedEnsemble *Ensemble
	sharedErr      error
)

// Load returns the process-wide ensemble, constructing it on first call.
// The sync.Once guard makes concurrent first access safe; every caller
// observes the same instance (or the same construction error).
func Load(ctx context.Context, cfg Config, logger *slog.Logger) (*Ensemble, error) {
	sharedOnce.Do(func() {
		sharedEnsemble, sharedErr = New(ctx, cfg, logger)
	})
	return sharedEnsemble, sharedErr
}

// Score analyzes one text. Texts shorter than the minimum length after
// cleaning return the zero score with confidence 0.0 without invoking any
// model. Inference failures in comprehensive mode are absorbed here and
// logged; callers iterating over many tracks never see them as errors.
func (e *Ensemble) Score(ctx context.Context, text string, mode Mode) Score {
	if len([]rune(strings.TrimSpace(text))) < minScoreLength {
		return Score{}
	}

	lex, err := e.lexicon.Score(text)
	if err != nil {
		e.logger.Warn("lexicon scoring failed", "error", err)
		return Score{}
	}

	if mode == ModeFast {
		return Score{
			Polarity:   lex.Polarity,
			Compound:   lex.Polarity,
			Positive:   lex.Positive,
			Negative:   lex.Negative,
			Neutral:    lex.Neutral,
			Valence:    lex.Polarity,
			Arousal:    0.0,
			Confidence: fastModeConfidence,
		}
	}

	label, err := e.contextual.ClassifySentiment(ctx, text)
	if err != nil {
		e.logger.Warn("contextual sentiment failed", "error", err)
		return Score{}
	}

	rawEmotions, err := e.emotions.ClassifyEmotions(ctx, text)
	if err != nil {
		e.logger.Warn("emotion classification failed", "error", err)
		return Score{}
	}

	emotions := MapEmotions(rawEmotions)
	affect := ProjectAffect(emotions)

	return Score{
		Polarity:   lex.Polarity*lexiconWeight + label.Polarity()*contextualWeight,
		Compound:   lex.Polarity,
		Positive:   lex.Positive,
		Negative:   lex.Negative,
		Neutral:    lex.Neutral,
		Emotions:   emotions,
		Valence:    affect.Valence,
		Arousal:    affect.Arousal,
		Confidence: label.Confidence,
	}
}
