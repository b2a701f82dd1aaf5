package model

// Payload kinds returned by next-question.
const (
	KindQuestion       = "question"
	KindTopicCompleted = "topic_completed"
)

// NextQuestionRequest carries the query parameters of next-question.
type NextQuestionRequest struct {
	ExamCode    string `form:"exam_code" binding:"omitempty,max=32"`
	SubjectCode string `form:"subject_code" binding:"omitempty,max=32"`
	TopicCode   string `form:"topic_code" binding:"omitempty,max=32"`
	AttemptID   *int64 `form:"attempt_id" binding:"omitempty,min=1"`
}

// QuestionPayload is a question served to the learner, correctness stripped.
type QuestionPayload struct {
	Kind        string         `json:"kind"`
	QuestionID  int64          `json:"question_id"`
	Prompt      string         `json:"prompt"`
	Topic       string         `json:"topic"`
	ReadingText *string        `json:"reading_text"`
	Choices     []PublicChoice `json:"choices"`
}

// TopicCompletedPayload reports a finished attempt.
type TopicCompletedPayload struct {
	Kind            string        `json:"kind"`
	Message         string        `json:"message"`
	AttemptID       int64         `json:"attempt_id"`
	Status          AttemptStatus `json:"status"`
	TotalQuestions  int           `json:"total_questions"`
	CorrectCount    int           `json:"correct_count"`
	ScorePercentage int           `json:"score_percentage"`
	ScorePAES       int           `json:"score_paes"`
	Score           int           `json:"score"`
}

// NextQuestionResult holds exactly one of Question or Completed.
type NextQuestionResult struct {
	Question  *QuestionPayload
	Completed *TopicCompletedPayload
}

// Payload returns whichever variant is set.
func (r *NextQuestionResult) Payload() any {
	if r.Completed != nil {
		return r.Completed
	}
	return r.Question
}

// NewTopicCompleted builds the completion payload for a completed attempt.
func NewTopicCompleted(a *Attempt) *TopicCompletedPayload {
	p := &TopicCompletedPayload{
		Kind:           KindTopicCompleted,
		Message:        "¡Tema completado!",
		AttemptID:      a.ID,
		Status:         a.Status,
		TotalQuestions: a.TotalQuestions,
		CorrectCount:   a.CorrectCount,
	}
	if a.TotalQuestions > 0 {
		p.ScorePercentage = ScorePercentage(a.CorrectCount, a.TotalQuestions)
		p.ScorePAES = PAESScore(a.CorrectCount, a.TotalQuestions)
	}
	if a.Score != nil {
		p.ScorePAES = *a.Score
	}
	p.Score = p.ScorePAES
	return p
}
