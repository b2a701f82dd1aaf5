package service

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tutorpaes/tutor-backend/internal/feedback"
	"github.com/tutorpaes/tutor-backend/internal/model"
	"github.com/tutorpaes/tutor-backend/internal/repository"
)

const (
	testExam   = "PAES"
	learnerID  = int64(1001)
	intruderID = int64(2002)
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.ProgressEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e *model.ProgressEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *e)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// quizFixture is a seeded PAES catalog: M1/ALG holds Q1 (correct B) and
// Q2 (correct A); M1/GEN holds one question; M1/EMPTY holds none.
type quizFixture struct {
	store     *repository.MemoryStore
	exam      model.Exam
	m1        model.Subject
	alg       model.Topic
	gen       model.Topic
	empty     model.Topic
	q1, q2    model.Question
	c1, c2    []model.Choice
	genQ      model.Question
	genC      []model.Choice
	publisher *recordingPublisher

	catalog  *CatalogService
	attempts *AttemptService
	answers  *AnswerService
	quiz     *QuizService
}

func newQuizFixture(t *testing.T) *quizFixture {
	t.Helper()

	f := &quizFixture{store: repository.NewMemoryStore(), publisher: &recordingPublisher{}}
	f.exam = f.store.AddExam(testExam, "PAES")
	f.m1 = f.store.AddSubject(f.exam.ID, "M1", "Matemática 1")
	f.alg = f.store.AddTopic(f.m1.ID, "ALG", "Álgebra")
	f.gen = f.store.AddTopic(f.m1.ID, "GEN", "General")
	f.empty = f.store.AddTopic(f.m1.ID, "EMPTY", "Sin preguntas")
	f.q1, f.c1 = f.store.AddQuestion(f.alg.ID, "Q1", "B")
	f.q2, f.c2 = f.store.AddQuestion(f.alg.ID, "Q2", "A")
	f.genQ, f.genC = f.store.AddQuestion(f.gen.ID, "G1", "C")

	log := zerolog.Nop()
	f.catalog = NewCatalogService(f.store, f.store, nil, 0, log)
	f.attempts = NewAttemptService(f.store, f.publisher, log)
	f.answers = NewAnswerService(f.catalog, f.attempts, f.store, feedback.NewRuleBased(), testExam, log)
	f.quiz = NewQuizService(f.catalog, f.attempts, NewQuestionSelector(rand.NewPCG(1, 2)), testExam, log)
	return f
}

func choice(t *testing.T, choices []model.Choice, label string) model.Choice {
	t.Helper()
	for _, c := range choices {
		if c.Label == label {
			return c
		}
	}
	t.Fatalf("no choice labelled %s", label)
	return model.Choice{}
}

func (f *quizFixture) answer(topic string, q model.Question, c model.Choice, attemptID *int64) *model.SubmitAnswerRequest {
	return &model.SubmitAnswerRequest{
		AttemptID:        attemptID,
		SubjectCode:      "M1",
		TopicCode:        topic,
		QuestionID:       q.ID,
		SelectedChoiceID: c.ID,
	}
}

func ptr[T any](v T) *T { return &v }
