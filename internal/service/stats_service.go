package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tutorpaes/tutor-backend/internal/model"
	"github.com/tutorpaes/tutor-backend/internal/repository"
)

// StatsService aggregates a learner's attempts per subject and topic.
type StatsService struct {
	catalog  CatalogStore
	attempts AttemptStore
	users    UserStore
	examCode string
}

func NewStatsService(catalog CatalogStore, attempts AttemptStore, users UserStore, examCode string) *StatsService {
	return &StatsService{catalog: catalog, attempts: attempts, users: users, examCode: examCode}
}

type topicTally struct {
	questions, correct int
	completedAt        *time.Time
}

// UserStats returns the stats of targetID. Only the user themself may read them.
func (s *StatsService) UserStats(ctx context.Context, callerID, targetID int64) (*model.UserStats, error) {
	if callerID != targetID {
		return nil, ErrForbidden
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	exam, err := s.catalog.GetExamByCode(ctx, s.examCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotSeeded
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	attempts, err := s.attempts.ListAttemptsByUser(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	tallies := make(map[int64]*topicTally)
	var totalQuestions, totalCorrect int
	for _, a := range attempts {
		totalQuestions += a.TotalQuestions
		totalCorrect += a.CorrectCount

		t, ok := tallies[a.TopicID]
		if !ok {
			t = &topicTally{}
			tallies[a.TopicID] = t
		}
		t.questions += a.TotalQuestions
		t.correct += a.CorrectCount
		if a.IsCompleted() && a.CompletedAt != nil {
			if t.completedAt == nil || a.CompletedAt.After(*t.completedAt) {
				t.completedAt = a.CompletedAt
			}
		}
	}

	subjects, err := s.catalog.ListSubjects(ctx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	stats := &model.UserStats{
		UserID:          targetID,
		TotalSubjects:   len(subjects),
		OverallAccuracy: accuracy(totalCorrect, totalQuestions),
		Subjects:        make([]model.SubjectStats, 0, len(subjects)),
	}

	for _, sub := range subjects {
		topics, err := s.catalog.ListTopics(ctx, sub.ID)
		if err != nil {
			return nil, fmt.Errorf("list topics: %w", err)
		}

		ss := model.SubjectStats{
			SubjectCode: sub.Code,
			SubjectName: sub.Name,
			Topics:      make([]model.TopicStats, 0, len(topics)),
		}
		subjectDone := len(topics) > 0
		for _, t := range topics {
			ts := model.TopicStats{TopicCode: t.Code}
			if tally, ok := tallies[t.ID]; ok {
				ts.Accuracy = accuracy(tally.correct, tally.questions)
				ts.CompletedAt = tally.completedAt
			}
			if ts.CompletedAt == nil {
				subjectDone = false
			}
			ss.Topics = append(ss.Topics, ts)
		}
		if subjectDone {
			stats.CompletedSubjects++
		}
		stats.Subjects = append(stats.Subjects, ss)
	}

	return stats, nil
}

// accuracy is correct/total as a percentage rounded to two decimals.
func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*10000) / 100
}
