package sentiment

import (
	"math"
	"testing"
)

func TestProjectAffect(t *testing.T) {
	tests := []struct {
		name        string
		emotions    EmotionVector
		wantValence float64
		wantArousal float64
	}{
		{
			name:        "zero vector",
			emotions:    EmotionVector{},
			wantValence: 0.0,
			wantArousal: 0.0,
		},
		{
			name:        "pure joy",
			emotions:    EmotionVector{Joy: 1.0},
			wantValence: 0.8,
			wantArousal: 0.6,
		},
		{
			name:        "pure sadness",
			emotions:    EmotionVector{Sadness: 1.0},
			wantValence: -0.7,
			wantArousal: -0.5,
		},
		{
			name:        "surprise has no valence weight",
			emotions:    EmotionVector{Surprise: 1.0},
			wantValence: 0.0,
			wantArousal: 0.7,
		},
		{
			name:        "love has no arousal weight",
			emotions:    EmotionVector{Love: 1.0},
			wantValence: 0.9,
			wantArousal: 0.0,
		},
		{
			name:        "saturated positive clipped to one",
			emotions:    EmotionVector{Joy: 1.0, Love: 1.0, Optimism: 1.0},
			wantValence: 1.0,
			wantArousal: 0.6,
		},
		{
			name:        "saturated negative clipped to minus one",
			emotions:    EmotionVector{Sadness: 1.0, Anger: 1.0, Fear: 1.0, Disgust: 1.0},
			wantValence: -1.0,
			wantArousal: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProjectAffect(tt.emotions)
			if math.Abs(got.Valence-tt.wantValence) > 1e-9 {
				t.Errorf("valence = %v, want %v", got.Valence, tt.wantValence)
			}
			if math.Abs(got.Arousal-tt.wantArousal) > 1e-9 {
				t.Errorf("arousal = %v, want %v", got.Arousal, tt.wantArousal)
			}
		})
	}
}

func TestProjectAffectAlwaysInRange(t *testing.T) {
	// Sweep extreme corners of the emotion cube.
	values := []float64{0, 0.5, 1}
	for _, j := range values {
		for _, s := range values {
			for _, a := range values {
				for _, f := range values {
					e := EmotionVector{
						Joy: j, Sadness: s, Anger: a, Fear: f,
						Surprise: 1, Disgust: 1, Optimism: 1, Love: 1,
					}
					got := ProjectAffect(e)
					if got.Valence < -1 || got.Valence > 1 {
						t.Fatalf("valence %v out of range for %+v", got.Valence, e)
					}
					if got.Arousal < -1 || got.Arousal > 1 {
						t.Fatalf("arousal %v out of range for %+v", got.Arousal, e)
					}
				}
			}
		}
	}
}
