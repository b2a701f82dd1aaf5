package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tutorpaes/tutor-backend/internal/model"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 50
)

// QuestionService handles admin question authoring.
type QuestionService struct {
	catalog   *CatalogService
	questions QuestionStore
	examCode  string
	log       zerolog.Logger
}

func NewQuestionService(catalog *CatalogService, questions QuestionStore, examCode string, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		catalog:   catalog,
		questions: questions,
		examCode:  examCode,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

// Create stores a multiple-choice question with exactly four labelled choices.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.QuestionCreated, error) {
	examCode := req.ExamCode
	if examCode == "" {
		examCode = s.examCode
	}
	triple, err := s.catalog.ResolveTriple(ctx, examCode, req.SubjectCode, req.TopicCode)
	if err != nil {
		return nil, err
	}

	labels := make(map[string]struct{}, len(req.Choices))
	for _, c := range req.Choices {
		if !slices.Contains(model.ChoiceLabels, c.Label) {
			return nil, ErrInvalidChoices
		}
		labels[c.Label] = struct{}{}
	}
	if len(req.Choices) != len(model.ChoiceLabels) || len(labels) != len(model.ChoiceLabels) {
		return nil, ErrInvalidChoices
	}
	if _, ok := labels[req.CorrectChoice]; !ok {
		return nil, ErrInvalidCorrectChoice
	}
	if strings.HasPrefix(strings.TrimSpace(req.Prompt), "[TEST]") {
		return nil, ErrTestQuestion
	}

	difficulty := req.Difficulty
	if difficulty == 0 {
		difficulty = 1
	}
	q := &model.Question{
		TopicID:      triple.Topic.ID,
		Prompt:       req.Prompt,
		ReadingText:  req.ReadingText,
		Explanation:  req.Explanation,
		Difficulty:   difficulty,
		QuestionType: model.QuestionTypeMultipleChoice,
		IsActive:     true,
	}
	choices := make([]model.Choice, 0, len(req.Choices))
	for _, c := range req.Choices {
		choices = append(choices, model.Choice{Label: c.Label, Text: c.Text, IsCorrect: c.Label == req.CorrectChoice})
	}

	if err := s.questions.CreateQuestion(ctx, q, choices); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	prompt := []rune(q.Prompt)
	if len(prompt) > 200 {
		prompt = prompt[:200]
	}
	s.log.Info().
		Int64("question_id", q.ID).
		Str("subject", req.SubjectCode).
		Str("topic", req.TopicCode).
		Str("prompt", string(prompt)).
		Msg("Question created")

	out := &model.QuestionCreated{
		QuestionID:    q.ID,
		SubjectCode:   req.SubjectCode,
		TopicCode:     req.TopicCode,
		Prompt:        q.Prompt,
		ReadingText:   q.ReadingText,
		Explanation:   q.Explanation,
		Difficulty:    q.Difficulty,
		Choices:       make([]model.PublicChoice, 0, len(choices)),
		CorrectChoice: req.CorrectChoice,
	}
	for _, c := range choices {
		out.Choices = append(out.Choices, model.PublicChoice{ID: c.ID, Label: c.Label, Text: c.Text})
	}
	return out, nil
}

// Recent lists the newest questions; limit is clamped to [1, MaxRecentLimit].
func (s *QuestionService) Recent(ctx context.Context, limit int) ([]model.RecentQuestion, error) {
	limit = max(1, min(MaxRecentLimit, limit))
	out, err := s.questions.ListRecentQuestions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent questions: %w", err)
	}
	if out == nil {
		out = []model.RecentQuestion{}
	}
	return out, nil
}
