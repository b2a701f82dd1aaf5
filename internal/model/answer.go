package model

import (
	"encoding/json"
	"time"
)

// AnswerRecord is the immutable grading outcome for one question within one attempt.
type AnswerRecord struct {
	ID               int64           `json:"id"`
	AttemptID        int64           `json:"attempt_id"`
	QuestionID       int64           `json:"question_id"`
	SelectedChoiceID *int64          `json:"selected_choice_id,omitempty"`
	IsCorrect        bool            `json:"is_correct"`
	FeedbackText     string          `json:"feedback_text"`
	ExtraPayload     json.RawMessage `json:"extra_payload"`
	CreatedAt        time.Time       `json:"created_at"`
}

// SubmitAnswerRequest is the payload for answering a question.
// UserID is never trusted for authorization; it is only compared against the caller.
type SubmitAnswerRequest struct {
	UserID           *int64 `json:"user_id" binding:"omitempty,min=1"`
	AttemptID        *int64 `json:"attempt_id" binding:"omitempty,min=1"`
	ExamCode         string `json:"exam_code" binding:"omitempty,max=32"`
	SubjectCode      string `json:"subject_code" binding:"required,min=1,max=32"`
	TopicCode        string `json:"topic_code" binding:"required,min=1,max=32"`
	QuestionID       int64  `json:"question_id" binding:"required,min=1"`
	SelectedChoiceID int64  `json:"selected_choice_id" binding:"required,min=1"`
}

// AnswerResult is returned for both first-time and duplicate submissions.
type AnswerResult struct {
	AttemptID         int64           `json:"attempt_id"`
	FeedbackID        int64           `json:"feedback_id"`
	IsCorrect         bool            `json:"is_correct"`
	FeedbackText      string          `json:"feedback_text"`
	IsAttemptFinished bool            `json:"is_attempt_finished"`
	ExtraPayload      json.RawMessage `json:"extra_payload"`
}

// AIFeedback is the explanation served by GET /ai/feedback/:id.
type AIFeedback struct {
	FeedbackID         int64   `json:"feedback_id"`
	Explanation        string  `json:"explanation"`
	IsCorrect          bool    `json:"is_correct"`
	Source             string  `json:"source"`
	CorrectChoiceID    *int64  `json:"correct_choice_id,omitempty"`
	CorrectChoiceLabel *string `json:"correct_choice_label,omitempty"`
}
