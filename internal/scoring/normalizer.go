package scoring

// The oracle grades answers on an 11-level ladder: 0.0, 0.1, ... 1.0.
// Raw scores that drift off the ladder are pulled back onto it via a fixed
// table of soft bands, narrower at the top so that only a near-perfect raw
// score earns a full point.

// Levels is the canonical score ladder, lowest to highest.
var Levels = []float64{0.0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}

// scoreBand maps a closed raw-score range onto one canonical level.
type scoreBand struct {
	level float64
	min   float64
	max   float64
}

var softBands = []scoreBand{
	{0.0, 0.0, 0.1},
	{0.1, 0.11, 0.2},
	{0.2, 0.21, 0.3},
	{0.3, 0.31, 0.4},
	{0.4, 0.41, 0.5},
	{0.5, 0.51, 0.6},
	{0.6, 0.61, 0.7},
	{0.7, 0.71, 0.8},
	{0.8, 0.81, 0.9},
	{0.9, 0.91, 0.95},
	{1.0, 0.96, 1.0},
}

// labels for each level, used in user-facing feedback
var levelLabels = map[float64]string{
	0.0: "incorrect",
	0.1: "very poor",
	0.2: "poor",
	0.3: "mostly incorrect",
	0.4: "weak",
	0.5: "partially correct",
	0.6: "decent",
	0.7: "almost correct",
	0.8: "good",
	0.9: "very good",
	1.0: "correct",
}

// Normalize maps an arbitrary raw score onto the canonical ladder.
// Already-canonical values pass through unchanged; out-of-range values are
// clamped. The function is pure and total.
func Normalize(raw float64) float64 {
	for _, level := range Levels {
		if raw == level {
			return raw
		}
	}

	if raw < 0.0 {
		return 0.0
	}
	if raw > 1.0 {
		return 1.0
	}

	for _, band := range softBands {
		if raw >= band.min && raw <= band.max {
			return band.level
		}
	}

	// Unreachable after clamping, but never fail on a numeric input.
	return 0.5
}

// Label returns the human-readable name of a canonical level.
func Label(level float64) string {
	if label, ok := levelLabels[level]; ok {
		return label
	}
	return levelLabels[Normalize(level)]
}

// Emoji returns the reaction emoji for a normalized score.
func Emoji(score float64) string {
	switch {
	case score == 0.0:
		return "❌"
	case score <= 0.2:
		return "😞"
	case score <= 0.4:
		return "😐"
	case score <= 0.6:
		return "🙂"
	case score <= 0.8:
		return "😊"
	case score <= 0.9:
		return "😄"
	default:
		return "🎉"
	}
}
