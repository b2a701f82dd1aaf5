package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tutorpaes/tutor-backend/internal/model"
)

// Default codes served when next-question omits them.
const (
	DefaultSubjectCode = "M1"
	DefaultTopicCode   = "ALG"
)

// QuizService serves the next question of a topic or reports completion.
type QuizService struct {
	catalog  *CatalogService
	attempts *AttemptService
	selector *QuestionSelector
	examCode string
	log      zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(catalog *CatalogService, attempts *AttemptService, selector *QuestionSelector, examCode string, log zerolog.Logger) *QuizService {
	return &QuizService{
		catalog:  catalog,
		attempts: attempts,
		selector: selector,
		examCode: examCode,
		log:      log.With().Str("component", "quiz_service").Logger(),
	}
}

// NextQuestion picks an unanswered question for the caller's attempt on the
// requested topic. It never creates an attempt; that happens on the first
// answer. When nothing is left the attempt is finalized and its score returned.
func (s *QuizService) NextQuestion(ctx context.Context, userID int64, req *model.NextQuestionRequest) (*model.NextQuestionResult, error) {
	examCode, subjectCode, topicCode := req.ExamCode, req.SubjectCode, req.TopicCode
	if examCode == "" {
		examCode = s.examCode
	}
	if subjectCode == "" {
		subjectCode = DefaultSubjectCode
	}
	if topicCode == "" {
		topicCode = DefaultTopicCode
	}

	triple, err := s.catalog.ResolveTriple(ctx, examCode, subjectCode, topicCode)
	if err != nil {
		return nil, err
	}

	attempt, err := s.attempts.Resolve(ctx, userID, triple, req.AttemptID)
	if err != nil {
		return nil, err
	}
	if attempt != nil && attempt.IsCompleted() {
		return &model.NextQuestionResult{Completed: model.NewTopicCompleted(attempt)}, nil
	}

	answered, err := s.attempts.AnsweredQuestionIDs(ctx, attempt)
	if err != nil {
		return nil, err
	}

	candidates, err := s.catalog.ActiveQuestions(ctx, triple.Topic.ID)
	if err != nil {
		return nil, fmt.Errorf("list questions of topic %d: %w", triple.Topic.ID, err)
	}

	question, err := s.selector.SelectNext(candidates, answered)
	if errors.Is(err, ErrTopicExhausted) {
		return s.complete(ctx, attempt)
	}
	if err != nil {
		return nil, err
	}

	choices, err := s.catalog.Choices(ctx, question.ID)
	if err != nil {
		return nil, fmt.Errorf("list choices of question %d: %w", question.ID, err)
	}

	s.log.Debug().Int64("question_id", question.ID).Int64("user_id", userID).Msg("Serving question")

	return &model.NextQuestionResult{
		Question: &model.QuestionPayload{
			Kind:        model.KindQuestion,
			QuestionID:  question.ID,
			Prompt:      question.Prompt,
			Topic:       triple.Topic.Code,
			ReadingText: question.ReadingText,
			Choices:     s.selector.ShuffleChoices(choices),
		},
	}, nil
}

func (s *QuizService) complete(ctx context.Context, attempt *model.Attempt) (*model.NextQuestionResult, error) {
	if attempt == nil || attempt.TotalQuestions == 0 {
		return nil, ErrEmptyAttempt
	}

	done, completed, err := s.attempts.Complete(ctx, attempt)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, fmt.Errorf("attempt %d is %s and cannot be completed", done.ID, done.Status)
	}
	return &model.NextQuestionResult{Completed: model.NewTopicCompleted(done)}, nil
}
