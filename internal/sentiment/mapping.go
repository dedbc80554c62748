package sentiment

import "strings"

// emotionMapping consolidates the GoEmotions open taxonomy into the eight
// canonical emotions. Many-to-one; labels not listed here are ignored.
// The table is static and never mutated at runtime.
var emotionMapping = map[string]string{
	"joy":            "joy",
	"sadness":        "sadness",
	"anger":          "anger",
	"fear":           "fear",
	"surprise":       "surprise",
	"disgust":        "disgust",
	"optimism":       "optimism",
	"love":           "love",
	"admiration":     "love",
	"amusement":      "joy",
	"approval":       "optimism",
	"caring":         "love",
	"desire":         "love",
	"excitement":     "joy",
	"gratitude":      "joy",
	"pride":          "joy",
	"relief":         "joy",
	"disappointment": "sadness",
	"embarrassment":  "sadness",
	"grief":          "sadness",
	"nervousness":    "fear",
	"remorse":        "sadness",
	"annoyance":      "anger",
	"disapproval":    "anger",
}

// MapEmotions folds open-taxonomy label scores into a canonical
// EmotionVector. Each canonical emotion takes the maximum score among its
// contributing labels, so synonyms ("amusement" and "excitement" both map
// to joy) never inflate an emotion beyond the strongest single signal.
// Scores are clipped to [0, 1]; the inference sidecar should already stay
// in range, but the vector invariant does not depend on it.
func MapEmotions(labels []LabelScore) EmotionVector {
	agg := make(map[string]float64, 8)
	for _, ls := range labels {
		canonical, ok := emotionMapping[strings.ToLower(ls.Label)]
		if !ok {
			continue
		}
		if score := clip(ls.Score, 0, 1); score > agg[canonical] {
			agg[canonical] = score
		}
	}

	return EmotionVector{
		Joy:      agg["joy"],
		Sadness:  agg["sadness"],
		Anger:    agg["anger"],
		Fear:     agg["fear"],
		Surprise: agg["surprise"],
		Disgust:  agg["disgust"],
		Optimism: agg["optimism"],
		Love:     agg["love"],
	}
}
