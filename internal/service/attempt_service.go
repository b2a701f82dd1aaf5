package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tutorpaes/tutor-backend/internal/model"
	"github.com/tutorpaes/tutor-backend/internal/repository"
)

// AttemptService owns the attempt lifecycle: resolution, creation and
// finalization. Counter updates happen in AttemptStore.InsertAnswer.
type AttemptService struct {
	store     AttemptStore
	publisher ProgressPublisher
	log       zerolog.Logger
}

// NewAttemptService creates a new AttemptService. publisher may be nil.
func NewAttemptService(store AttemptStore, publisher ProgressPublisher, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		store:     store,
		publisher: publisher,
		log:       log.With().Str("component", "attempt_service").Logger(),
	}
}

// Resolve returns the attempt a request refers to without creating one.
// With an explicit ID the attempt must belong to the caller and match the
// triple. Without one, the latest in-progress attempt is returned, or nil.
func (s *AttemptService) Resolve(ctx context.Context, userID int64, t *model.Triple, explicitID *int64) (*model.Attempt, error) {
	if explicitID != nil {
		a, err := s.store.GetAttempt(ctx, *explicitID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrAttemptNotFound
			}
			return nil, fmt.Errorf("get attempt %d: %w", *explicitID, err)
		}
		if a.UserID != userID {
			return nil, ErrAttemptNotFound
		}
		if !a.Matches(t) {
			return nil, ErrAttemptMismatch
		}
		return a, nil
	}

	a, err := s.store.FindInProgress(ctx, userID, t)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find in-progress attempt: %w", err)
	}
	return a, nil
}

// ResolveOrCreate is Resolve, starting a fresh attempt when none is in progress.
func (s *AttemptService) ResolveOrCreate(ctx context.Context, userID int64, t *model.Triple, explicitID *int64) (*model.Attempt, error) {
	a, err := s.Resolve(ctx, userID, t, explicitID)
	if err != nil || a != nil {
		return a, err
	}

	a, err = s.store.CreateAttempt(ctx, userID, t)
	if err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	s.log.Debug().
		Int64("attempt_id", a.ID).
		Int64("user_id", userID).
		Str("subject", t.Subject.Code).
		Str("topic", t.Topic.Code).
		Msg("Attempt resolved")
	return a, nil
}

// AnsweredQuestionIDs returns the questions already graded in the attempt.
// A nil attempt has answered nothing.
func (s *AttemptService) AnsweredQuestionIDs(ctx context.Context, a *model.Attempt) (map[int64]struct{}, error) {
	if a == nil {
		return map[int64]struct{}{}, nil
	}
	ids, err := s.store.AnsweredQuestionIDs(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("answered questions of attempt %d: %w", a.ID, err)
	}
	return ids, nil
}

// FinalizeIfExhausted completes the attempt when every active question of
// its topic has an answer record. Returns the current attempt and whether
// it is completed.
func (s *AttemptService) FinalizeIfExhausted(ctx context.Context, a *model.Attempt) (*model.Attempt, bool, error) {
	if a.IsCompleted() {
		return a, true, nil
	}

	remaining, err := s.store.HasRemainingQuestions(ctx, a.ID, a.TopicID)
	if err != nil {
		return nil, false, fmt.Errorf("check remaining questions: %w", err)
	}
	if remaining {
		return a, false, nil
	}
	return s.Complete(ctx, a)
}

// Complete transitions the attempt to completed and scores it. Completing
// an already completed attempt returns it unchanged. An attempt with no
// answers cannot be completed.
func (s *AttemptService) Complete(ctx context.Context, a *model.Attempt) (*model.Attempt, bool, error) {
	if a.IsCompleted() {
		return a, true, nil
	}

	updated, transitioned, err := s.store.CompleteAttempt(ctx, a.ID)
	if err != nil {
		return nil, false, fmt.Errorf("complete attempt %d: %w", a.ID, err)
	}

	switch {
	case transitioned:
		s.log.Info().
			Int64("attempt_id", updated.ID).
			Int64("user_id", updated.UserID).
			Int("correct", updated.CorrectCount).
			Int("total", updated.TotalQuestions).
			Msg("Topic completed")
		s.publish(ctx, updated)
		return updated, true, nil
	case updated.IsCompleted():
		return updated, true, nil
	case updated.TotalQuestions == 0:
		s.log.Warn().Int64("attempt_id", updated.ID).Msg("Attempt has no questions answered")
		return updated, false, ErrEmptyAttempt
	default:
		return updated, false, nil
	}
}

func (s *AttemptService) publish(ctx context.Context, a *model.Attempt) {
	if s.publisher == nil {
		return
	}
	completedAt := time.Now()
	if a.CompletedAt != nil {
		completedAt = *a.CompletedAt
	}
	score := 0
	if a.Score != nil {
		score = *a.Score
	}
	err := s.publisher.Publish(ctx, &model.ProgressEvent{
		UserID:         a.UserID,
		TopicID:        a.TopicID,
		AttemptID:      a.ID,
		TotalQuestions: a.TotalQuestions,
		CorrectCount:   a.CorrectCount,
		Score:          score,
		CompletedAt:    completedAt,
	})
	if err != nil {
		s.log.Error().Err(err).Int64("attempt_id", a.ID).Msg("Failed to publish progress event")
	}
}
