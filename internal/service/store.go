package service

import (
	"context"

	"github.com/tutorpaes/tutor-backend/internal/model"
)

// CatalogStore is read access to the exam/subject/topic hierarchy.
type CatalogStore interface {
	GetExamByCode(ctx context.Context, code string) (*model.Exam, error)
	GetSubjectByCode(ctx context.Context, examID int64, code string) (*model.Subject, error)
	GetTopicByCode(ctx context.Context, subjectID int64, code string) (*model.Topic, error)
	GetTopic(ctx context.Context, id int64) (*model.Topic, error)
	ListExams(ctx context.Context) ([]model.Exam, error)
	ListSubjects(ctx context.Context, examID int64) ([]model.Subject, error)
	ListTopics(ctx context.Context, subjectID int64) ([]model.Topic, error)
}

// QuestionStore holds questions and their choices.
type QuestionStore interface {
	GetQuestion(ctx context.Context, id int64) (*model.Question, error)
	GetChoice(ctx context.Context, id int64) (*model.Choice, error)
	ListChoices(ctx context.Context, questionID int64) ([]model.Choice, error)
	ListActiveQuestions(ctx context.Context, topicID int64) ([]model.Question, error)
	CreateQuestion(ctx context.Context, q *model.Question, choices []model.Choice) error
	ListRecentQuestions(ctx context.Context, limit int) ([]model.RecentQuestion, error)
}

// AttemptStore persists attempts and answer records. InsertAnswer must
// write the record and bump the counters as one atomic unit.
type AttemptStore interface {
	GetAttempt(ctx context.Context, id int64) (*model.Attempt, error)
	FindInProgress(ctx context.Context, userID int64, t *model.Triple) (*model.Attempt, error)
	CreateAttempt(ctx context.Context, userID int64, t *model.Triple) (*model.Attempt, error)
	CompleteAttempt(ctx context.Context, id int64) (*model.Attempt, bool, error)
	ListAttemptsByUser(ctx context.Context, userID int64) ([]model.Attempt, error)

	GetAnswer(ctx context.Context, attemptID, questionID int64) (*model.AnswerRecord, error)
	GetAnswerByID(ctx context.Context, id int64) (*model.AnswerRecord, error)
	AnsweredQuestionIDs(ctx context.Context, attemptID int64) (map[int64]struct{}, error)
	HasRemainingQuestions(ctx context.Context, attemptID, topicID int64) (bool, error)
	InsertAnswer(ctx context.Context, rec *model.AnswerRecord) error
}

// UserStore is the user account lookup used by login.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// ProgressPublisher receives an event for every attempt this service completes.
type ProgressPublisher interface {
	Publish(ctx context.Context, e *model.ProgressEvent) error
}
