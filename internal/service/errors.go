package service

import "errors"

// Catalog errors.
var (
	ErrNotSeeded        = errors.New("exam catalog not seeded")
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrTopicNotFound    = errors.New("topic not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrChoiceNotFound   = errors.New("choice not found")
)

// Quiz errors.
var (
	ErrInvalidChoice         = errors.New("selected choice does not belong to this question")
	ErrQuestionTopicMismatch = errors.New("question does not belong to the requested topic")
	ErrAttemptNotFound       = errors.New("attempt not found")
	ErrAttemptMismatch       = errors.New("attempt does not match requested subject/topic")
	ErrEmptyAttempt          = errors.New("cannot complete a topic without answering at least one question")
	ErrAttemptCompleted      = errors.New("attempt is already completed")
	ErrTopicExhausted        = errors.New("no unanswered active question left in topic")
	ErrFeedbackNotFound      = errors.New("feedback not found")
)

// Authoring errors.
var (
	ErrInvalidChoices       = errors.New("choices must carry the four distinct labels A, B, C and D")
	ErrInvalidCorrectChoice = errors.New("correct_choice must be one of the submitted choices")
	ErrTestQuestion         = errors.New("questions marked [TEST] are not allowed")
)

// ErrForbidden signals an identity mismatch between the token and the request.
var ErrForbidden = errors.New("user_id does not match the authenticated caller")
