package moodcluster

// Affect-plane thresholds for naming. Valence and arousal both live in
// [-1, 1]; arousal rarely strays far below zero so its axis splits lower.
const (
	highValence = 0.15
	lowValence  = -0.15
	highArousal = 0.3
)

// moodName labels a centroid by its quadrant on the valence/arousal
// plane, with a neutral band in the middle of the valence axis.
//
// Quadrants:
//   - positive valence + high arousal = "Euphoric & Energetic"
//   - positive valence + low arousal  = "Warm & Mellow"
//   - negative valence + high arousal = "Tense & Turbulent"
//   - negative valence + low arousal  = "Somber & Reflective"
func moodName(c Centroid) string {
	energized := c.Arousal > highArousal

	switch {
	case c.Valence > highValence && energized:
		return "Euphoric & Energetic"
	case c.Valence > highValence:
		return "Warm & Mellow"
	case c.Valence < lowValence && energized:
		return "Tense & Turbulent"
	case c.Valence < lowValence:
		return "Somber & Reflective"
	case energized:
		return "Restless & Neutral"
	default:
		return "Even-Keeled"
	}
}
