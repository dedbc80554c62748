package sentiment

import (
	"time"

	"github.com/google/uuid"
)

// EnsembleTag marks a record as the fused composite of all models, as
// opposed to a record written by a single model.
const EnsembleTag = "ensemble"

// Record is one persisted mood score for a (track, model) pair. Records
// are immutable: re-scoring a track produces a new record.
type Record struct {
	ID         uuid.UUID
	TrackID    string
	ModelTag   string
	Polarity   float64
	Compound   float64
	Emotions   EmotionVector
	Valence    float64
	Arousal    float64
	Confidence float64
	CreatedAt  time.Time
}

// Record freezes a score into a persistable record for trackID.
func (s Score) Record(trackID string) Record {
	return Record{
		ID:         uuid.New(),
		TrackID:    trackID,
		ModelTag:   EnsembleTag,
		Polarity:   s.Polarity,
		Compound:   s.Compound,
		Emotions:   s.Emotions,
		Valence:    s.Valence,
		Arousal:    s.Arousal,
		Confidence: s.Confidence,
		CreatedAt:  time.Now(),
	}
}
