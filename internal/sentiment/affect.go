package sentiment

// AffectPoint locates a text in Russell's circumplex model of affect:
// valence is pleasantness, arousal is activation, both in [-1,1].
type AffectPoint struct {
	Valence float64 `json:"valence"`
	Arousal float64 `json:"arousal"`
}

// ProjectAffect maps a canonical emotion vector onto valence-arousal
// space with fixed linear weights. Surprise carries no valence and
// disgust, love, and optimism carry no arousal; the two dimensions are
// independent. Both outputs are clipped to [-1,1].
func ProjectAffect(e EmotionVector) AffectPoint {
	valence := e.Joy*0.8 +
		e.Love*0.9 +
		e.Optimism*0.6 -
		e.Sadness*0.7 -
		e.Anger*0.8 -
		e.Fear*0.6 -
		e.Disgust*0.7

	arousal := e.Anger*0.9 +
		e.Fear*0.8 +
		e.Joy*0.6 +
		e.Surprise*0.7 -
		e.Sadness*0.5

	return AffectPoint{
		Valence: clip(valence, -1, 1),
		Arousal: clip(arousal, -1, 1),
	}
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
