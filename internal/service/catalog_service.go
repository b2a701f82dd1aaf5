package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/tutorpaes/tutor-backend/internal/config"
	"github.com/tutorpaes/tutor-backend/internal/model"
	"github.com/tutorpaes/tutor-backend/internal/repository"
)

// CatalogService resolves catalog entities by code or ID.
type CatalogService struct {
	catalog   CatalogStore
	questions QuestionStore
	rdb       *redis.Client
	ttl       time.Duration
	log       zerolog.Logger
}

// NewCatalogService creates a new CatalogService. rdb may be nil, which disables caching.
func NewCatalogService(catalog CatalogStore, questions QuestionStore, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		catalog:   catalog,
		questions: questions,
		rdb:       rdb,
		ttl:       ttl,
		log:       log.With().Str("component", "catalog_service").Logger(),
	}
}

// ResolveTriple looks up exam, subject and topic by their codes.
func (s *CatalogService) ResolveTriple(ctx context.Context, examCode, subjectCode, topicCode string) (*model.Triple, error) {
	cacheKey := config.CacheKey.CatalogTripleKey(examCode, subjectCode, topicCode)
	if t := s.cachedTriple(ctx, cacheKey); t != nil {
		return t, nil
	}

	exam, err := s.catalog.GetExamByCode(ctx, examCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotSeeded
		}
		return nil, fmt.Errorf("get exam %s: %w", examCode, err)
	}

	subject, err := s.catalog.GetSubjectByCode(ctx, exam.ID, subjectCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("get subject %s: %w", subjectCode, err)
	}

	topic, err := s.catalog.GetTopicByCode(ctx, subject.ID, topicCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("get topic %s: %w", topicCode, err)
	}

	t := &model.Triple{Exam: *exam, Subject: *subject, Topic: *topic}
	s.cacheTriple(ctx, cacheKey, t)
	return t, nil
}

func (s *CatalogService) cachedTriple(ctx context.Context, key string) *model.Triple {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		}
		return nil
	}
	var t model.Triple
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil
	}
	return &t
}

func (s *CatalogService) cacheTriple(ctx context.Context, key string, t *model.Triple) {
	if s.rdb == nil {
		return
	}
	raw, _ := json.Marshal(t)
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}

func (s *CatalogService) ResolveQuestion(ctx context.Context, id int64) (*model.Question, error) {
	q, err := s.questions.GetQuestion(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question %d: %w", id, err)
	}
	return q, nil
}

func (s *CatalogService) ResolveChoice(ctx context.Context, id int64) (*model.Choice, error) {
	c, err := s.questions.GetChoice(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChoiceNotFound
		}
		return nil, fmt.Errorf("get choice %d: %w", id, err)
	}
	return c, nil
}

func (s *CatalogService) ResolveTopic(ctx context.Context, id int64) (*model.Topic, error) {
	t, err := s.catalog.GetTopic(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("get topic %d: %w", id, err)
	}
	return t, nil
}

func (s *CatalogService) ActiveQuestions(ctx context.Context, topicID int64) ([]model.Question, error) {
	return s.questions.ListActiveQuestions(ctx, topicID)
}

func (s *CatalogService) Choices(ctx context.Context, questionID int64) ([]model.Choice, error) {
	return s.questions.ListChoices(ctx, questionID)
}

// ListExams returns every exam with its subjects.
func (s *CatalogService) ListExams(ctx context.Context) ([]model.ExamWithSubjects, error) {
	exams, err := s.catalog.ListExams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	out := make([]model.ExamWithSubjects, 0, len(exams))
	for _, e := range exams {
		subjects, err := s.catalog.ListSubjects(ctx, e.ID)
		if err != nil {
			return nil, fmt.Errorf("list subjects of exam %d: %w", e.ID, err)
		}
		if subjects == nil {
			subjects = []model.Subject{}
		}
		out = append(out, model.ExamWithSubjects{Exam: e, Subjects: subjects})
	}
	return out, nil
}

// ListSubjects returns the subjects of an exam with their topics.
func (s *CatalogService) ListSubjects(ctx context.Context, examID int64) ([]model.SubjectWithTopics, error) {
	subjects, err := s.catalog.ListSubjects(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	out := make([]model.SubjectWithTopics, 0, len(subjects))
	for _, sub := range subjects {
		topics, err := s.catalog.ListTopics(ctx, sub.ID)
		if err != nil {
			return nil, fmt.Errorf("list topics of subject %d: %w", sub.ID, err)
		}
		if topics == nil {
			topics = []model.Topic{}
		}
		out = append(out, model.SubjectWithTopics{Subject: sub, Topics: topics})
	}
	return out, nil
}

func (s *CatalogService) ListTopics(ctx context.Context, subjectID int64) ([]model.Topic, error) {
	topics, err := s.catalog.ListTopics(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	if topics == nil {
		topics = []model.Topic{}
	}
	return topics, nil
}
