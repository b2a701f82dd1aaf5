package model

import "time"

// Question represents a single practice question inside a topic.
type Question struct {
	ID           int64        `json:"id"`
	TopicID      int64        `json:"topic_id"`
	Prompt       string       `json:"prompt"`
	ReadingText  *string      `json:"reading_text,omitempty"`
	Explanation  *string      `json:"explanation,omitempty"`
	Difficulty   int16        `json:"difficulty"`
	QuestionType QuestionType `json:"question_type"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
}

type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "mcq"
)

// Choice is one of the four labelled options of a question.
type Choice struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Label      string `json:"label"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
}

// PublicChoice is a choice without its correctness flag.
type PublicChoice struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// ChoiceLabels are the only labels a question may carry.
var ChoiceLabels = []string{"A", "B", "C", "D"}

// ─── Authoring ──────────────────────────────────────────────────────

// ChoiceInput is a single choice in a create-question request.
type ChoiceInput struct {
	Label string `json:"label" binding:"required,oneof=A B C D"`
	Text  string `json:"text" binding:"required,min=1,max=5000"`
}

// CreateQuestionRequest is the payload for authoring a question.
type CreateQuestionRequest struct {
	ExamCode      string        `json:"exam_code" binding:"omitempty,max=32"`
	SubjectCode   string        `json:"subject_code" binding:"required,min=1,max=32"`
	TopicCode     string        `json:"topic_code" binding:"required,min=1,max=32"`
	Prompt        string        `json:"prompt" binding:"required,min=5,max=20000"`
	ReadingText   *string       `json:"reading_text" binding:"omitempty,max=50000"`
	Explanation   *string       `json:"explanation" binding:"omitempty,max=50000"`
	Difficulty    int16         `json:"difficulty" binding:"omitempty,min=1,max=3"`
	Choices       []ChoiceInput `json:"choices" binding:"required,len=4,dive"`
	CorrectChoice string        `json:"correct_choice" binding:"required,oneof=A B C D"`
}

// QuestionCreated is returned after a question has been authored.
type QuestionCreated struct {
	QuestionID    int64          `json:"question_id"`
	SubjectCode   string         `json:"subject_code"`
	TopicCode     string         `json:"topic_code"`
	Prompt        string         `json:"prompt"`
	ReadingText   *string        `json:"reading_text,omitempty"`
	Explanation   *string        `json:"explanation,omitempty"`
	Difficulty    int16          `json:"difficulty"`
	Choices       []PublicChoice `json:"choices"`
	CorrectChoice string         `json:"correct_choice"`
}

// RecentQuestion is an entry in the admin "recent questions" listing.
type RecentQuestion struct {
	QuestionID  int64          `json:"question_id"`
	SubjectCode string         `json:"subject_code"`
	TopicCode   string         `json:"topic_code"`
	Prompt      string         `json:"prompt"`
	ReadingText *string        `json:"reading_text,omitempty"`
	Difficulty  int16          `json:"difficulty"`
	CreatedAt   time.Time      `json:"created_at"`
	Choices     []PublicChoice `json:"choices"`
}
