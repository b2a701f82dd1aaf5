// Package feedback turns a graded answer into learner-facing explanation text.
package feedback

import (
	"context"
	"encoding/json"

	"github.com/tutorpaes/tutor-backend/internal/model"
)

// Sources recorded in the payload.
const (
	SourceRuleBased   = "rule_based_phase1"
	SourceLLM         = "llm"
	SourcePlaceholder = "placeholder"
)

// Input is a graded answer with the catalog context a generator may need.
type Input struct {
	AttemptID   int64
	QuestionID  int64
	TopicCode   string
	Prompt      string
	ReadingText *string
	Explanation *string
	IsCorrect   bool
	Selected    model.Choice
	// Correct is nil when the question has no choice flagged correct.
	Correct *model.Choice
}

// Payload is stored as the answer record's extra_payload.
type Payload struct {
	Explanation        string  `json:"explanation"`
	IsCorrect          bool    `json:"is_correct"`
	Source             string  `json:"source"`
	CorrectChoiceID    *int64  `json:"correct_choice_id,omitempty"`
	CorrectChoiceLabel *string `json:"correct_choice_label,omitempty"`
	Model              string  `json:"model,omitempty"`
}

// Result is the generator output.
type Result struct {
	Text    string
	Payload Payload
}

// RawPayload encodes the payload for storage.
func (r *Result) RawPayload() json.RawMessage {
	raw, err := json.Marshal(r.Payload)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return raw
}

// Generator produces explanation text for a graded answer.
type Generator interface {
	Generate(ctx context.Context, in Input) (*Result, error)
}

// Placeholder is the minimal correct/incorrect text used when every
// generator failed.
func Placeholder(isCorrect bool) *Result {
	text := "Incorrecto (por ahora sin IA)."
	if isCorrect {
		text = "¡Correcto!"
	}
	return &Result{
		Text:    text,
		Payload: Payload{Explanation: text, IsCorrect: isCorrect, Source: SourcePlaceholder},
	}
}

func correctFields(c *model.Choice) (*int64, *string) {
	if c == nil {
		return nil, nil
	}
	id, label := c.ID, c.Label
	return &id, &label
}
