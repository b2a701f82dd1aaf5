package model

import "time"

// UserProgress is the per-topic aggregate maintained by the progress worker.
type UserProgress struct {
	UserID            int64     `json:"user_id"`
	TopicID           int64     `json:"topic_id"`
	AttemptsCompleted int       `json:"attempts_completed"`
	QuestionsAnswered int       `json:"questions_answered"`
	CorrectAnswers    int       `json:"correct_answers"`
	Accuracy          float64   `json:"accuracy"`
	BestScore         *int      `json:"best_score,omitempty"`
	LastActivityAt    time.Time `json:"last_activity_at"`
}

// ProgressEvent is pushed to the progress queue when an attempt completes.
type ProgressEvent struct {
	UserID         int64     `json:"user_id"`
	TopicID        int64     `json:"topic_id"`
	AttemptID      int64     `json:"attempt_id"`
	TotalQuestions int       `json:"total_questions"`
	CorrectCount   int       `json:"correct_count"`
	Score          int       `json:"score"`
	CompletedAt    time.Time `json:"completed_at"`
}

// UserStats is the response of GET /users/:id/stats.
type UserStats struct {
	UserID            int64          `json:"user_id"`
	TotalSubjects     int            `json:"total_subjects"`
	CompletedSubjects int            `json:"completed_subjects"`
	OverallAccuracy   float64        `json:"overall_accuracy"`
	Subjects          []SubjectStats `json:"subjects"`
}

type SubjectStats struct {
	SubjectCode string       `json:"subject_code"`
	SubjectName string       `json:"subject_name"`
	Topics      []TopicStats `json:"topics"`
}

type TopicStats struct {
	TopicCode   string     `json:"topic_code"`
	Accuracy    float64    `json:"accuracy"`
	CompletedAt *time.Time `json:"completed_at"`
}
