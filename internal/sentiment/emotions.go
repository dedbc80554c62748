// Package sentiment implements the multi-model lyric mood ensemble:
// lexicon polarity, contextual transformer sentiment, and multi-label
// emotion classification fused into one composite score per text.
package sentiment

// EmotionVector holds the eight canonical emotion intensities, each in
// [0,1]. Absent signal is 0.0, never omitted.
type EmotionVector struct {
	Joy      float64 `json:"joy"`
	Sadness  float64 `json:"sadness"`
	Anger    float64 `json:"anger"`
	Fear     float64 `json:"fear"`
	Surprise float64 `json:"surprise"`
	Disgust  float64 `json:"disgust"`
	Optimism float64 `json:"optimism"`
	Love     float64 `json:"love"`
}

// LabelScore is one open-taxonomy emotion label with its model score.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
