package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tutorpaes/tutor-backend/internal/feedback"
	"github.com/tutorpaes/tutor-backend/internal/model"
	"github.com/tutorpaes/tutor-backend/internal/repository"
)

// FeedbackService re-generates the explanation of a recorded answer on demand.
type FeedbackService struct {
	catalog   *CatalogService
	store     AttemptStore
	generator feedback.Generator
}

func NewFeedbackService(catalog *CatalogService, store AttemptStore, generator feedback.Generator) *FeedbackService {
	return &FeedbackService{catalog: catalog, store: store, generator: generator}
}

// Explain returns an explanation for the answer record, which must belong
// to one of the caller's attempts.
func (s *FeedbackService) Explain(ctx context.Context, callerID, feedbackID int64) (*model.AIFeedback, error) {
	rec, err := s.store.GetAnswerByID(ctx, feedbackID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("get answer record: %w", err)
	}

	attempt, err := s.store.GetAttempt(ctx, rec.AttemptID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.UserID != callerID {
		return nil, ErrFeedbackNotFound
	}

	question, err := s.catalog.ResolveQuestion(ctx, rec.QuestionID)
	if err != nil {
		return nil, err
	}
	topic, err := s.catalog.ResolveTopic(ctx, question.TopicID)
	if err != nil {
		return nil, err
	}
	choices, err := s.catalog.Choices(ctx, question.ID)
	if err != nil {
		return nil, fmt.Errorf("list choices: %w", err)
	}

	in := feedback.Input{
		AttemptID:   rec.AttemptID,
		QuestionID:  rec.QuestionID,
		TopicCode:   topic.Code,
		Prompt:      question.Prompt,
		ReadingText: question.ReadingText,
		Explanation: question.Explanation,
		IsCorrect:   rec.IsCorrect,
	}
	for i := range choices {
		if choices[i].IsCorrect {
			in.Correct = &choices[i]
		}
		if rec.SelectedChoiceID != nil && choices[i].ID == *rec.SelectedChoiceID {
			in.Selected = choices[i]
		}
	}

	res, err := s.generator.Generate(ctx, in)
	if err != nil {
		res = feedback.Placeholder(rec.IsCorrect)
	}

	return &model.AIFeedback{
		FeedbackID:         rec.ID,
		Explanation:        res.Payload.Explanation,
		IsCorrect:          rec.IsCorrect,
		Source:             res.Payload.Source,
		CorrectChoiceID:    res.Payload.CorrectChoiceID,
		CorrectChoiceLabel: res.Payload.CorrectChoiceLabel,
	}, nil
}
