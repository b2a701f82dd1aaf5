package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tutorpaes/tutor-backend/internal/model"
)

// MemoryStore is an in-process implementation of the catalog, question,
// attempt and user stores. A single mutex gives every method the same
// atomicity the Postgres repositories get from transactions and unique
// indexes. Used by tests and local tooling.
type MemoryStore struct {
	mu sync.Mutex

	nextID   int64
	exams    map[int64]model.Exam
	subjects map[int64]model.Subject
	topics   map[int64]model.Topic
	question map[int64]model.Question
	choices  map[int64]model.Choice
	attempts map[int64]model.Attempt
	answers  map[int64]model.AnswerRecord
	users    map[int64]model.User

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		exams:    make(map[int64]model.Exam),
		subjects: make(map[int64]model.Subject),
		topics:   make(map[int64]model.Topic),
		question: make(map[int64]model.Question),
		choices:  make(map[int64]model.Choice),
		attempts: make(map[int64]model.Attempt),
		answers:  make(map[int64]model.AnswerRecord),
		users:    make(map[int64]model.User),
		now:      time.Now,
	}
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

// ─── Seeding ────────────────────────────────────────────────────────

func (s *MemoryStore) AddExam(code, name string) model.Exam {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := model.Exam{ID: s.id(), Code: code, Name: name}
	s.exams[e.ID] = e
	return e
}

func (s *MemoryStore) AddSubject(examID int64, code, name string) model.Subject {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := model.Subject{ID: s.id(), ExamID: examID, Code: code, Name: name}
	s.subjects[sub.ID] = sub
	return sub
}

func (s *MemoryStore) AddTopic(subjectID int64, code, name string) model.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := model.Topic{ID: s.id(), SubjectID: subjectID, Code: code, Name: name}
	s.topics[t.ID] = t
	return t
}

// AddQuestion stores an active question with choices A-D, correctLabel marked correct.
func (s *MemoryStore) AddQuestion(topicID int64, prompt, correctLabel string) (model.Question, []model.Choice) {
	q := model.Question{TopicID: topicID, Prompt: prompt, Difficulty: 1, QuestionType: model.QuestionTypeMultipleChoice, IsActive: true}
	choices := make([]model.Choice, 0, len(model.ChoiceLabels))
	for _, l := range model.ChoiceLabels {
		choices = append(choices, model.Choice{Label: l, Text: fmt.Sprintf("Opción %s", l), IsCorrect: l == correctLabel})
	}
	_ = s.CreateQuestion(context.Background(), &q, choices)
	return q, choices
}

// SetQuestionActive toggles a question's eligibility for selection.
func (s *MemoryStore) SetQuestionActive(id int64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q, ok := s.question[id]; ok {
		q.IsActive = active
		s.question[id] = q
	}
}

// ─── Catalog ────────────────────────────────────────────────────────

func (s *MemoryStore) GetExamByCode(_ context.Context, code string) (*model.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.exams {
		if e.Code == code {
			return &e, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetSubjectByCode(_ context.Context, examID int64, code string) (*model.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subjects {
		if sub.ExamID == examID && sub.Code == code {
			return &sub, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetTopicByCode(_ context.Context, subjectID int64, code string) (*model.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.topics {
		if t.SubjectID == subjectID && t.Code == code {
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetTopic(_ context.Context, id int64) (*model.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.topics[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *MemoryStore) ListExams(_ context.Context) ([]model.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Exam, 0, len(s.exams))
	for _, e := range s.exams {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListSubjects(_ context.Context, examID int64) ([]model.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Subject
	for _, sub := range s.subjects {
		if sub.ExamID == examID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListTopics(_ context.Context, subjectID int64) ([]model.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Topic
	for _, t := range s.topics {
		if t.SubjectID == subjectID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ─── Questions ──────────────────────────────────────────────────────

func (s *MemoryStore) GetQuestion(_ context.Context, id int64) (*model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.question[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &q, nil
}

func (s *MemoryStore) GetChoice(_ context.Context, id int64) (*model.Choice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.choices[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) ListChoices(_ context.Context, questionID int64) ([]model.Choice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.choicesOf(questionID), nil
}

func (s *MemoryStore) choicesOf(questionID int64) []model.Choice {
	var out []model.Choice
	for _, c := range s.choices {
		if c.QuestionID == questionID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func (s *MemoryStore) ListActiveQuestions(_ context.Context, topicID int64) ([]model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Question
	for _, q := range s.question {
		if q.TopicID == topicID && q.IsActive {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateQuestion(_ context.Context, q *model.Question, choices []model.Choice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.topics[q.TopicID]; !ok {
		return ErrNotFound
	}
	q.ID = s.id()
	q.CreatedAt = s.now()
	s.question[q.ID] = *q
	for i := range choices {
		choices[i].ID = s.id()
		choices[i].QuestionID = q.ID
		s.choices[choices[i].ID] = choices[i]
	}
	return nil
}

func (s *MemoryStore) ListRecentQuestions(_ context.Context, limit int) ([]model.RecentQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qs := make([]model.Question, 0, len(s.question))
	for _, q := range s.question {
		qs = append(qs, q)
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID > qs[j].ID })
	if len(qs) > limit {
		qs = qs[:limit]
	}

	out := make([]model.RecentQuestion, 0, len(qs))
	for _, q := range qs {
		t := s.topics[q.TopicID]
		rq := model.RecentQuestion{
			QuestionID:  q.ID,
			SubjectCode: s.subjects[t.SubjectID].Code,
			TopicCode:   t.Code,
			Prompt:      q.Prompt,
			ReadingText: q.ReadingText,
			Difficulty:  q.Difficulty,
			CreatedAt:   q.CreatedAt,
		}
		for _, c := range s.choicesOf(q.ID) {
			rq.Choices = append(rq.Choices, model.PublicChoice{ID: c.ID, Label: c.Label, Text: c.Text})
		}
		out = append(out, rq)
	}
	return out, nil
}

// ─── Attempts ───────────────────────────────────────────────────────

func (s *MemoryStore) GetAttempt(_ context.Context, id int64) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) FindInProgress(_ context.Context, userID int64, t *model.Triple) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findInProgress(userID, t)
}

func (s *MemoryStore) findInProgress(userID int64, t *model.Triple) (*model.Attempt, error) {
	var found *model.Attempt
	for _, a := range s.attempts {
		if a.UserID == userID && a.Matches(t) && a.Status == model.AttemptStatusInProgress {
			if found == nil || a.ID > found.ID {
				found = &a
			}
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (s *MemoryStore) CreateAttempt(_ context.Context, userID int64, t *model.Triple) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, err := s.findInProgress(userID, t); err == nil {
		return a, nil
	}
	a := model.Attempt{
		ID:        s.id(),
		UserID:    userID,
		ExamID:    t.Exam.ID,
		SubjectID: t.Subject.ID,
		TopicID:   t.Topic.ID,
		Status:    model.AttemptStatusInProgress,
		StartedAt: s.now(),
	}
	s.attempts[a.ID] = a
	return &a, nil
}

func (s *MemoryStore) CompleteAttempt(_ context.Context, id int64) (*model.Attempt, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, false, ErrNotFound
	}
	if a.Status != model.AttemptStatusInProgress || a.TotalQuestions == 0 {
		return &a, false, nil
	}
	now := s.now()
	score := model.PAESScore(a.CorrectCount, a.TotalQuestions)
	a.Status = model.AttemptStatusCompleted
	a.CompletedAt = &now
	a.Score = &score
	s.attempts[id] = a
	return &a, true, nil
}

func (s *MemoryStore) ListAttemptsByUser(_ context.Context, userID int64) ([]model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Attempt
	for _, a := range s.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ─── Answer records ─────────────────────────────────────────────────

func (s *MemoryStore) GetAnswer(_ context.Context, attemptID, questionID int64) (*model.AnswerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.answers {
		if rec.AttemptID == attemptID && rec.QuestionID == questionID {
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetAnswerByID(_ context.Context, id int64) (*model.AnswerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.answers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) AnsweredQuestionIDs(_ context.Context, attemptID int64) (map[int64]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answeredIDs(attemptID), nil
}

func (s *MemoryStore) answeredIDs(attemptID int64) map[int64]struct{} {
	ids := make(map[int64]struct{})
	for _, rec := range s.answers {
		if rec.AttemptID == attemptID {
			ids[rec.QuestionID] = struct{}{}
		}
	}
	return ids
}

func (s *MemoryStore) HasRemainingQuestions(_ context.Context, attemptID, topicID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	answered := s.answeredIDs(attemptID)
	for _, q := range s.question {
		if q.TopicID != topicID || !q.IsActive {
			continue
		}
		if _, ok := answered[q.ID]; !ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) InsertAnswer(_ context.Context, rec *model.AnswerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.answers {
		if existing.AttemptID == rec.AttemptID && existing.QuestionID == rec.QuestionID {
			return ErrDuplicateAnswer
		}
	}
	a, ok := s.attempts[rec.AttemptID]
	if !ok || a.Status != model.AttemptStatusInProgress {
		return ErrAttemptClosed
	}

	if len(rec.ExtraPayload) == 0 {
		rec.ExtraPayload = json.RawMessage(`{}`)
	}
	rec.ID = s.id()
	rec.CreatedAt = s.now()
	s.answers[rec.ID] = *rec

	a.TotalQuestions++
	if rec.IsCorrect {
		a.CorrectCount++
	}
	s.attempts[a.ID] = a
	return nil
}

// CountAnswers returns how many records an attempt holds.
func (s *MemoryStore) CountAnswers(attemptID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answeredIDs(attemptID))
}

// ─── Users ──────────────────────────────────────────────────────────

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	u.ID = s.id()
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
	return nil
}
