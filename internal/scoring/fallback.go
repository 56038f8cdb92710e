package scoring

import "strings"

// Fallback thresholds on the shared-word ratio between the answer and the
// expected text. Values are already canonical levels, no normalization needed.
var fallbackThresholds = []struct {
	ratio    float64
	level    float64
	feedback string
}{
	{0.9, 0.9, "Excellent translation with minor differences"},
	{0.7, 0.7, "Good translation with small mistakes"},
	{0.5, 0.5, "Partially correct translation"},
	{0.3, 0.3, "Translation has serious mistakes"},
}

// FallbackScore grades an answer with a lexical-overlap heuristic. It is used
// whenever the oracle call fails, times out, or returns something unparseable,
// so a submission always yields some score. Returns the level and a short
// feedback line.
func FallbackScore(userAnswer, correctAnswer string) (float64, string) {
	user := strings.ToLower(strings.TrimSpace(userAnswer))
	correct := strings.ToLower(strings.TrimSpace(correctAnswer))

	if correct != "" && user == correct {
		return 1.0, "Correct translation!"
	}

	userWords := tokenSet(user)
	correctWords := tokenSet(correct)

	common := 0
	for word := range userWords {
		if correctWords[word] {
			common++
		}
	}

	ratio := 0.0
	if len(correctWords) > 0 {
		ratio = float64(common) / float64(len(correctWords))
	}

	for _, t := range fallbackThresholds {
		if ratio >= t.ratio {
			return t.level, t.feedback
		}
	}
	return 0.1, "Incorrect translation"
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(s) {
		set[word] = true
	}
	return set
}
