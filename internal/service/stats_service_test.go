package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tutorpaes/tutor-backend/internal/model"
)

func TestUserStats(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	user := &model.User{Email: "ana@example.com", Name: "Ana", IsActive: true}
	if err := f.store.Create(ctx, user); err != nil {
		t.Fatal(err)
	}
	other := &model.User{Email: "beto@example.com", Name: "Beto", IsActive: true}
	if err := f.store.Create(ctx, other); err != nil {
		t.Fatal(err)
	}

	// ALG: one right, one wrong -> completed at 50%. GEN: one right -> completed at 100%.
	r, err := f.answers.SubmitAnswer(ctx, user.ID, f.answer("ALG", f.q1, choice(t, f.c1, "B"), nil))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.answers.SubmitAnswer(ctx, user.ID, f.answer("ALG", f.q2, choice(t, f.c2, "D"), &r.AttemptID)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.answers.SubmitAnswer(ctx, user.ID, f.answer("GEN", f.genQ, choice(t, f.genC, "C"), nil)); err != nil {
		t.Fatal(err)
	}

	stats := NewStatsService(f.store, f.store, f.store, testExam)

	if _, err := stats.UserStats(ctx, other.ID, user.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign stats: err = %v, want ErrForbidden", err)
	}
	if _, err := stats.UserStats(ctx, 9999, 9999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user: err = %v, want ErrUserNotFound", err)
	}

	got, err := stats.UserStats(ctx, user.ID, user.ID)
	if err != nil {
		t.Fatalf("UserStats: %v", err)
	}
	if got.TotalSubjects != 1 || len(got.Subjects) != 1 {
		t.Fatalf("subjects = %+v", got.Subjects)
	}
	if got.OverallAccuracy != 66.67 {
		t.Errorf("overall accuracy = %v, want 66.67", got.OverallAccuracy)
	}
	// EMPTY is never completed, so M1 as a whole is not.
	if got.CompletedSubjects != 0 {
		t.Errorf("completed subjects = %d, want 0", got.CompletedSubjects)
	}

	byCode := map[string]model.TopicStats{}
	for _, ts := range got.Subjects[0].Topics {
		byCode[ts.TopicCode] = ts
	}
	if ts := byCode["ALG"]; ts.Accuracy != 50 || ts.CompletedAt == nil {
		t.Errorf("ALG = %+v", ts)
	}
	if ts := byCode["GEN"]; ts.Accuracy != 100 || ts.CompletedAt == nil {
		t.Errorf("GEN = %+v", ts)
	}
	if ts := byCode["EMPTY"]; ts.Accuracy != 0 || ts.CompletedAt != nil {
		t.Errorf("EMPTY = %+v", ts)
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		correct, total int
		want           float64
	}{
		{0, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{3, 4, 75},
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := accuracy(tt.correct, tt.total); got != tt.want {
			t.Errorf("accuracy(%d, %d) = %v, want %v", tt.correct, tt.total, got, tt.want)
		}
	}
}
