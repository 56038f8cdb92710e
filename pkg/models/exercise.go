package models

import "time"

// Direction of a translation exercise
type Direction string

const (
	// DirectionSourceToTarget shows the source text and expects the target-language answer
	DirectionSourceToTarget Direction = "source_to_target"
	// DirectionTargetToSource shows the target text and expects the source-language answer
	DirectionTargetToSource Direction = "target_to_source"
)

// PendingExercise is the per-user marker of the phrase awaiting an answer.
// At most one row exists per user; dispensing a new phrase replaces it.
type PendingExercise struct {
	UserID     int64     `json:"user_id" db:"user_id"`
	PhraseID   int64     `json:"phrase_id" db:"phrase_id"`
	SourceText string    `json:"source_text" db:"source_text"`
	TargetText string    `json:"target_text" db:"target_text"`
	Direction  Direction `json:"direction" db:"direction"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Prompt returns the text shown to the user for this exercise.
func (e *PendingExercise) Prompt() string {
	if e.Direction == DirectionTargetToSource {
		return e.TargetText
	}
	return e.SourceText
}

// Expected returns the text the answer is scored against.
func (e *PendingExercise) Expected() string {
	if e.Direction == DirectionTargetToSource {
		return e.SourceText
	}
	return e.TargetText
}

// ExerciseView is what the dispensing API hands to a front end.
type ExerciseView struct {
	PhraseID   int64     `json:"phrase_id"`
	Prompt     string    `json:"prompt"`
	Direction  Direction `json:"direction"`
	Difficulty string    `json:"difficulty"`
}
