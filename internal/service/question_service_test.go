package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tutorpaes/tutor-backend/internal/model"
)

func validQuestion() *model.CreateQuestionRequest {
	return &model.CreateQuestionRequest{
		SubjectCode: "M1",
		TopicCode:   "ALG",
		Prompt:      "¿Cuánto es 2 + 2?",
		Choices: []model.ChoiceInput{
			{Label: "A", Text: "3"},
			{Label: "B", Text: "4"},
			{Label: "C", Text: "5"},
			{Label: "D", Text: "22"},
		},
		CorrectChoice: "B",
	}
}

func TestCreateQuestion(t *testing.T) {
	f := newQuizFixture(t)
	svc := NewQuestionService(f.catalog, f.store, testExam, zerolog.Nop())
	ctx := context.Background()

	created, err := svc.Create(ctx, validQuestion())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Difficulty != 1 || created.CorrectChoice != "B" || len(created.Choices) != 4 {
		t.Errorf("created = %+v", created)
	}

	choices, _ := f.store.ListChoices(ctx, created.QuestionID)
	for _, c := range choices {
		if c.IsCorrect != (c.Label == "B") {
			t.Errorf("choice %s correct = %v", c.Label, c.IsCorrect)
		}
	}

	// The new question becomes part of the ALG pool.
	active, _ := f.store.ListActiveQuestions(ctx, f.alg.ID)
	if len(active) != 3 {
		t.Errorf("active ALG questions = %d, want 3", len(active))
	}
}

func TestCreateQuestionRejections(t *testing.T) {
	f := newQuizFixture(t)
	svc := NewQuestionService(f.catalog, f.store, testExam, zerolog.Nop())

	tests := []struct {
		name   string
		mutate func(r *model.CreateQuestionRequest)
		want   error
	}{
		{"repeated label", func(r *model.CreateQuestionRequest) { r.Choices[3].Label = "A" }, ErrInvalidChoices},
		{"three choices", func(r *model.CreateQuestionRequest) { r.Choices = r.Choices[:3] }, ErrInvalidChoices},
		{"correct label missing", func(r *model.CreateQuestionRequest) {
			r.Choices[1].Label = "A"
			r.Choices[0].Label = "C"
			r.Choices[2].Label = "D"
			r.Choices[3].Label = "E"
		}, ErrInvalidChoices},
		{"correct not among choices", func(r *model.CreateQuestionRequest) { r.CorrectChoice = "E" }, ErrInvalidCorrectChoice},
		{"test marker", func(r *model.CreateQuestionRequest) { r.Prompt = "  [TEST] borrar" }, ErrTestQuestion},
		{"unknown topic", func(r *model.CreateQuestionRequest) { r.TopicCode = "X1" }, ErrTopicNotFound},
		{"unknown exam", func(r *model.CreateQuestionRequest) { r.ExamCode = "SAT" }, ErrNotSeeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validQuestion()
			tt.mutate(req)
			if _, err := svc.Create(context.Background(), req); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRecentQuestionsClampsLimit(t *testing.T) {
	f := newQuizFixture(t)
	svc := NewQuestionService(f.catalog, f.store, testExam, zerolog.Nop())
	ctx := context.Background()

	for i := range 60 {
		f.store.AddQuestion(f.gen.ID, fmt.Sprintf("extra %d", i), "A")
	}

	tests := []struct {
		limit, want int
	}{
		{0, 1},
		{-5, 1},
		{5, 5},
		{500, MaxRecentLimit},
	}
	for _, tt := range tests {
		got, err := svc.Recent(ctx, tt.limit)
		if err != nil {
			t.Fatalf("Recent(%d): %v", tt.limit, err)
		}
		if len(got) != tt.want {
			t.Errorf("Recent(%d) returned %d, want %d", tt.limit, len(got), tt.want)
		}
	}

	newest, _ := svc.Recent(ctx, 1)
	if newest[0].Prompt != "extra 59" || newest[0].TopicCode != "GEN" || newest[0].SubjectCode != "M1" {
		t.Errorf("newest = %+v", newest[0])
	}
}
