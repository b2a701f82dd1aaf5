package model

import "time"

// AttemptStatus enumerates attempt states.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusCompleted  AttemptStatus = "completed"
	// AttemptStatusAbandoned is reserved; nothing in this service produces it.
	AttemptStatusAbandoned AttemptStatus = "abandoned"
)

// Attempt is a learner's pass through one topic's question pool.
type Attempt struct {
	ID             int64         `json:"id"`
	UserID         int64         `json:"user_id"`
	ExamID         int64         `json:"exam_id"`
	SubjectID      int64         `json:"subject_id"`
	TopicID        int64         `json:"topic_id"`
	Status         AttemptStatus `json:"status"`
	StartedAt      time.Time     `json:"started_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
	TotalQuestions int           `json:"total_questions"`
	CorrectCount   int           `json:"correct_count"`
	Score          *int          `json:"score,omitempty"`
}

// Matches reports whether the attempt is scoped to the given triple.
func (a *Attempt) Matches(t *Triple) bool {
	return a.ExamID == t.Exam.ID && a.SubjectID == t.Subject.ID && a.TopicID == t.Topic.ID
}

func (a *Attempt) IsCompleted() bool {
	return a.Status == AttemptStatusCompleted
}

// PAESScore returns floor(correct/total*1000). total must be > 0.
func PAESScore(correct, total int) int {
	return correct * 1000 / total
}

// ScorePercentage returns floor(correct/total*100). total must be > 0.
func ScorePercentage(correct, total int) int {
	return correct * 100 / total
}
