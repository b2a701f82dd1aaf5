package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tutorpaes/tutor-backend/internal/feedback"
	"github.com/tutorpaes/tutor-backend/internal/model"
	"github.com/tutorpaes/tutor-backend/internal/repository"
)

// AnswerService grades submissions and records them exactly once per
// (attempt, question).
type AnswerService struct {
	catalog   *CatalogService
	attempts  *AttemptService
	store     AttemptStore
	generator feedback.Generator
	examCode  string
	log       zerolog.Logger
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(
	catalog *CatalogService,
	attempts *AttemptService,
	store AttemptStore,
	generator feedback.Generator,
	examCode string,
	log zerolog.Logger,
) *AnswerService {
	return &AnswerService{
		catalog:   catalog,
		attempts:  attempts,
		store:     store,
		generator: generator,
		examCode:  examCode,
		log:       log.With().Str("component", "answer_service").Logger(),
	}
}

// SubmitAnswer grades an answer for the caller. A repeated submission for a
// question already graded in the attempt returns the original result.
func (s *AnswerService) SubmitAnswer(ctx context.Context, callerID int64, req *model.SubmitAnswerRequest) (*model.AnswerResult, error) {
	if req.UserID != nil && *req.UserID != callerID {
		return nil, ErrForbidden
	}

	question, err := s.catalog.ResolveQuestion(ctx, req.QuestionID)
	if err != nil {
		return nil, err
	}

	choice, err := s.catalog.ResolveChoice(ctx, req.SelectedChoiceID)
	if err != nil {
		if errors.Is(err, ErrChoiceNotFound) {
			return nil, ErrInvalidChoice
		}
		return nil, err
	}
	if choice.QuestionID != question.ID {
		return nil, ErrInvalidChoice
	}

	examCode := req.ExamCode
	if examCode == "" {
		examCode = s.examCode
	}
	triple, err := s.catalog.ResolveTriple(ctx, examCode, req.SubjectCode, req.TopicCode)
	if err != nil {
		return nil, err
	}
	if question.TopicID != triple.Topic.ID {
		return nil, ErrQuestionTopicMismatch
	}

	attempt, err := s.attempts.ResolveOrCreate(ctx, callerID, triple, req.AttemptID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetAnswer(ctx, attempt.ID, question.ID)
	switch {
	case err == nil:
		s.log.Info().
			Int64("attempt_id", attempt.ID).
			Int64("question_id", question.ID).
			Msg("Duplicate answer detected, returning recorded result")
		return s.duplicate(ctx, attempt, existing)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("lookup answer record: %w", err)
	}

	if attempt.IsCompleted() {
		return nil, ErrAttemptCompleted
	}

	isCorrect := choice.IsCorrect
	fb := s.generate(ctx, attempt, question, triple.Topic.Code, choice, isCorrect)

	selectedID := choice.ID
	rec := &model.AnswerRecord{
		AttemptID:        attempt.ID,
		QuestionID:       question.ID,
		SelectedChoiceID: &selectedID,
		IsCorrect:        isCorrect,
		FeedbackText:     fb.Text,
		ExtraPayload:     fb.RawPayload(),
	}
	if err := s.store.InsertAnswer(ctx, rec); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateAnswer):
			// Lost the race against a concurrent submission.
			existing, err := s.store.GetAnswer(ctx, attempt.ID, question.ID)
			if err != nil {
				return nil, fmt.Errorf("reload answer record: %w", err)
			}
			return s.duplicate(ctx, attempt, existing)
		case errors.Is(err, repository.ErrAttemptClosed):
			return nil, ErrAttemptCompleted
		default:
			return nil, fmt.Errorf("record answer: %w", err)
		}
	}

	_, finished, err := s.attempts.FinalizeIfExhausted(ctx, attempt)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("attempt_id", attempt.ID).
		Int64("question_id", question.ID).
		Bool("correct", isCorrect).
		Bool("finished", finished).
		Msg("Answer recorded")

	return &model.AnswerResult{
		AttemptID:         attempt.ID,
		FeedbackID:        rec.ID,
		IsCorrect:         rec.IsCorrect,
		FeedbackText:      rec.FeedbackText,
		IsAttemptFinished: finished,
		ExtraPayload:      rec.ExtraPayload,
	}, nil
}

// duplicate serves an already recorded answer, finalizing the attempt if
// its topic is exhausted.
func (s *AnswerService) duplicate(ctx context.Context, attempt *model.Attempt, rec *model.AnswerRecord) (*model.AnswerResult, error) {
	_, finished, err := s.attempts.FinalizeIfExhausted(ctx, attempt)
	if err != nil {
		return nil, err
	}
	return &model.AnswerResult{
		AttemptID:         attempt.ID,
		FeedbackID:        rec.ID,
		IsCorrect:         rec.IsCorrect,
		FeedbackText:      rec.FeedbackText,
		IsAttemptFinished: finished,
		ExtraPayload:      rec.ExtraPayload,
	}, nil
}

func (s *AnswerService) generate(ctx context.Context, attempt *model.Attempt, q *model.Question, topicCode string, selected *model.Choice, isCorrect bool) *feedback.Result {
	if s.generator == nil {
		return feedback.Placeholder(isCorrect)
	}

	in := feedback.Input{
		AttemptID:   attempt.ID,
		QuestionID:  q.ID,
		TopicCode:   topicCode,
		Prompt:      q.Prompt,
		ReadingText: q.ReadingText,
		Explanation: q.Explanation,
		IsCorrect:   isCorrect,
		Selected:    *selected,
	}
	choices, err := s.catalog.Choices(ctx, q.ID)
	if err != nil {
		s.log.Warn().Err(err).Int64("question_id", q.ID).Msg("Failed to load choices for feedback")
	}
	for i := range choices {
		if choices[i].IsCorrect {
			in.Correct = &choices[i]
			break
		}
	}

	res, err := s.generator.Generate(ctx, in)
	if err != nil {
		s.log.Warn().Err(err).Int64("question_id", q.ID).Msg("Feedback generator failed, using placeholder")
		return feedback.Placeholder(isCorrect)
	}
	return res
}
