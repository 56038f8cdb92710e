package models

// OracleResult is the parsed reply of the external scoring model.
type OracleResult struct {
	Score        float64  `json:"score"` // raw, not yet normalized
	Feedback     string   `json:"feedback"`
	Suggestions  []string `json:"suggestions"`
	Alternatives []string `json:"alternatives"`
	Note         string   `json:"note"`
}

// ProgressUpdate is the outcome of applying one normalized score to a phrase.
type ProgressUpdate struct {
	NewTotal    float64 `json:"new_total"`
	JustLearned bool    `json:"just_learned"`
	Changed     bool    `json:"changed"` // false when the phrase was already learned
}

// ScoreResult is what a front end receives for a scored submission.
type ScoreResult struct {
	PhraseID     int64     `json:"phrase_id"`
	Direction    Direction `json:"direction"`
	Score        float64   `json:"score"` // normalized level
	NewTotal     float64   `json:"new_total"`
	Threshold    float64   `json:"threshold"` // total at which the phrase retires
	JustLearned  bool      `json:"just_learned"`
	Feedback     string    `json:"feedback"`
	CorrectText  string    `json:"correct_text,omitempty"` // filled when the answer was not perfect
	FellBack     bool      `json:"fell_back"`              // heuristic scorer was used instead of the oracle
	Suggestions  []string  `json:"suggestions,omitempty"`
	Alternatives []string  `json:"alternatives,omitempty"`
	Note         string    `json:"note,omitempty"`
}
