package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/tutorpaes/tutor-backend/internal/config"
	"github.com/tutorpaes/tutor-backend/internal/feedback"
	"github.com/tutorpaes/tutor-backend/internal/handler"
	"github.com/tutorpaes/tutor-backend/internal/model"
	"github.com/tutorpaes/tutor-backend/internal/repository"
	"github.com/tutorpaes/tutor-backend/internal/service"
	"github.com/tutorpaes/tutor-backend/internal/validator"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Setup()
	os.Exit(m.Run())
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
	Metadata struct {
		RequestID string `json:"request_id"`
	} `json:"metadata"`
}

type testServer struct {
	t       *testing.T
	engine  *gin.Engine
	store   *repository.MemoryStore
	q1, q2  model.Question
	c1, c2  []model.Choice
	learner *model.User
	admin   *model.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		GinMode:         gin.TestMode,
		JWTSecret:       "router-test-secret",
		JWTExpiry:       time.Hour,
		BcryptCost:      bcrypt.MinCost,
		ExamCode:        "PAES",
		CatalogCacheTTL: 5 * time.Minute,
	}

	store := repository.NewMemoryStore()
	exam := store.AddExam("PAES", "PAES")
	m1 := store.AddSubject(exam.ID, "M1", "Matemática 1")
	alg := store.AddTopic(m1.ID, "ALG", "Álgebra")
	store.AddTopic(m1.ID, "GEN", "General")
	q1, c1 := store.AddQuestion(alg.ID, "Q1", "B")
	q2, c2 := store.AddQuestion(alg.ID, "Q2", "A")

	log := zerolog.Nop()
	auth := service.NewAuthService(cfg, nil, store)
	hash, err := auth.HashPassword("secreto123")
	if err != nil {
		t.Fatal(err)
	}
	learner := &model.User{Email: "ana@example.com", Name: "Ana", PasswordHash: hash, IsActive: true}
	admin := &model.User{Email: "profe@example.com", Name: "Profe", PasswordHash: hash, IsActive: true, IsAdmin: true}
	for _, u := range []*model.User{learner, admin} {
		if err := store.Create(context.Background(), u); err != nil {
			t.Fatal(err)
		}
	}

	generator := feedback.NewRuleBased()
	catalog := service.NewCatalogService(store, store, nil, cfg.CatalogCacheTTL, log)
	attempts := service.NewAttemptService(store, nil, log)
	handlers := &Handlers{
		Auth:    handler.NewAuthHandler(auth),
		Catalog: handler.NewCatalogHandler(catalog),
		Quiz: handler.NewQuizHandler(
			service.NewQuizService(catalog, attempts, service.NewQuestionSelector(nil), cfg.ExamCode, log),
			service.NewAnswerService(catalog, attempts, store, generator, cfg.ExamCode, log),
		),
		Feedback: handler.NewFeedbackHandler(service.NewFeedbackService(catalog, store, generator)),
		User:     handler.NewUserHandler(service.NewStatsService(store, store, store, cfg.ExamCode)),
		Question: handler.NewQuestionHandler(service.NewQuestionService(catalog, store, cfg.ExamCode, log)),
		System:   handler.NewSystemHandler(nil, log),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &testServer{
		t:       t,
		engine:  SetupRouter(ctx, auth, handlers, cfg),
		store:   store,
		q1:      q1,
		q2:      q2,
		c1:      c1,
		c2:      c2,
		learner: learner,
		admin:   admin,
	}
}

func (s *testServer) do(method, path, token string, body any) (int, envelope, http.Header) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		s.t.Fatalf("%s %s: response is not an envelope: %v (%s)", method, path, err, w.Body.String())
	}
	return w.Code, env, w.Header()
}

func (s *testServer) login(email string) string {
	s.t.Helper()
	code, env, _ := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "secreto123"})
	if code != http.StatusOK {
		s.t.Fatalf("login %s: status %d", email, code)
	}
	var resp model.LoginResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		s.t.Fatal(err)
	}
	return resp.AccessToken
}

func choiceID(choices []model.Choice, label string) int64 {
	for _, c := range choices {
		if c.Label == label {
			return c.ID
		}
	}
	return 0
}

func errorCode(env envelope) string {
	if env.Error == nil {
		return ""
	}
	return env.Error.Code
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, env, hdr := s.do(http.MethodGet, "/health", "", nil)
	if code != http.StatusOK || env.Metadata.RequestID == "" || hdr.Get("X-Request-ID") == "" {
		t.Fatalf("health: %d %+v", code, env)
	}
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"wrong password", gin.H{"email": "ana@example.com", "password": "incorrecta"}, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"bad email", gin.H{"email": "ana", "password": "secreto123"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing body", nil, http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env, _ := s.do(http.MethodPost, "/api/v1/auth/login", "", tt.body)
			if code != tt.wantCode || errorCode(env) != tt.wantErr {
				t.Fatalf("got %d %s, want %d %s", code, errorCode(env), tt.wantCode, tt.wantErr)
			}
		})
	}

	token := s.login("ana@example.com")
	code, env, hdr := s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	if code != http.StatusOK || hdr.Get("Cache-Control") != "no-store" {
		t.Fatalf("me: %d %s", code, hdr.Get("Cache-Control"))
	}
	var me struct {
		User map[string]any `json:"user"`
	}
	_ = json.Unmarshal(env.Data, &me)
	if me.User["email"] != "ana@example.com" {
		t.Errorf("me = %v", me.User)
	}
	if _, leaked := me.User["password_hash"]; leaked {
		t.Error("password hash leaked in profile")
	}

	if code, env, _ := s.do(http.MethodGet, "/api/v1/auth/me", "", nil); code != http.StatusUnauthorized || errorCode(env) != "TOKEN_REQUIRED" {
		t.Errorf("anonymous me: %d %s", code, errorCode(env))
	}
	if code, env, _ := s.do(http.MethodGet, "/api/v1/auth/me", "not-a-jwt", nil); code != http.StatusUnauthorized || errorCode(env) != "TOKEN_INVALID" {
		t.Errorf("garbage token: %d %s", code, errorCode(env))
	}
	if code, _, _ := s.do(http.MethodPost, "/api/v1/auth/logout", token, nil); code != http.StatusOK {
		t.Errorf("logout: %d", code)
	}
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	code, env, hdr := s.do(http.MethodGet, "/api/v1/catalog/exams", "", nil)
	if code != http.StatusOK || hdr.Get("Cache-Control") != "public, max-age=300" {
		t.Fatalf("exams: %d %q", code, hdr.Get("Cache-Control"))
	}
	var exams struct {
		Exams []model.ExamWithSubjects `json:"exams"`
	}
	if err := json.Unmarshal(env.Data, &exams); err != nil || len(exams.Exams) != 1 {
		t.Fatalf("exams = %s (%v)", env.Data, err)
	}

	path := fmt.Sprintf("/api/v1/catalog/subjects?exam_id=%d", exams.Exams[0].ID)
	if code, _, _ := s.do(http.MethodGet, path, "", nil); code != http.StatusOK {
		t.Errorf("subjects: %d", code)
	}
	if code, env, _ := s.do(http.MethodGet, "/api/v1/catalog/topics?subject_id=abc", "", nil); code != http.StatusBadRequest || errorCode(env) != "VALIDATION_ERROR" {
		t.Errorf("bad subject_id: %d %s", code, errorCode(env))
	}
}

func TestQuizFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login("ana@example.com")

	code, env, _ := s.do(http.MethodGet, "/api/v1/quiz/next-question?subject_code=M1&topic_code=ALG", token, nil)
	if code != http.StatusOK {
		t.Fatalf("next-question: %d %s", code, errorCode(env))
	}
	var q model.QuestionPayload
	if err := json.Unmarshal(env.Data, &q); err != nil || q.Kind != model.KindQuestion || len(q.Choices) != 4 {
		t.Fatalf("question = %s", env.Data)
	}
	var raw map[string]any
	_ = json.Unmarshal(env.Data, &raw)
	for _, c := range raw["choices"].([]any) {
		if _, leaked := c.(map[string]any)["is_correct"]; leaked {
			t.Fatal("choice correctness leaked")
		}
	}

	answer := gin.H{
		"subject_code":       "M1",
		"topic_code":         "ALG",
		"question_id":        s.q1.ID,
		"selected_choice_id": choiceID(s.c1, "B"),
	}
	code, first, _ := s.do(http.MethodPost, "/api/v1/quiz/answer", token, answer)
	if code != http.StatusOK {
		t.Fatalf("answer: %d %s", code, errorCode(first))
	}
	_, second, _ := s.do(http.MethodPost, "/api/v1/quiz/answer", token, answer)
	if !bytes.Equal(first.Data, second.Data) {
		t.Errorf("duplicate answer differs:\n%s\n%s", first.Data, second.Data)
	}

	var res model.AnswerResult
	_ = json.Unmarshal(first.Data, &res)
	if !res.IsCorrect || res.IsAttemptFinished {
		t.Fatalf("result = %+v", res)
	}

	code, env, _ = s.do(http.MethodPost, "/api/v1/quiz/answer", token, gin.H{
		"attempt_id":         res.AttemptID,
		"subject_code":       "M1",
		"topic_code":         "ALG",
		"question_id":        s.q2.ID,
		"selected_choice_id": choiceID(s.c2, "A"),
	})
	var last model.AnswerResult
	_ = json.Unmarshal(env.Data, &last)
	if code != http.StatusOK || !last.IsAttemptFinished {
		t.Fatalf("last answer: %d %s", code, env.Data)
	}

	path := fmt.Sprintf("/api/v1/quiz/next-question?subject_code=M1&topic_code=ALG&attempt_id=%d", res.AttemptID)
	_, env, _ = s.do(http.MethodGet, path, token, nil)
	var done model.TopicCompletedPayload
	if err := json.Unmarshal(env.Data, &done); err != nil || done.Kind != model.KindTopicCompleted ||
		done.CorrectCount != 2 || done.TotalQuestions != 2 || done.ScorePercentage != 100 || done.ScorePAES != 1000 {
		t.Fatalf("completed = %s", env.Data)
	}

	code, env, _ = s.do(http.MethodGet, fmt.Sprintf("/api/v1/ai/feedback/%d", res.FeedbackID), token, nil)
	if code != http.StatusOK {
		t.Errorf("feedback: %d %s", code, errorCode(env))
	}

	code, env, _ = s.do(http.MethodGet, fmt.Sprintf("/api/v1/users/%d/stats", s.learner.ID), token, nil)
	if code != http.StatusOK {
		t.Errorf("stats: %d %s", code, errorCode(env))
	}
}

func TestQuizErrors(t *testing.T) {
	s := newTestServer(t)
	token := s.login("ana@example.com")
	otherToken := s.login("profe@example.com")

	_, env, _ := s.do(http.MethodPost, "/api/v1/quiz/answer", token, gin.H{
		"subject_code": "M1", "topic_code": "ALG", "question_id": s.q1.ID, "selected_choice_id": choiceID(s.c1, "A"),
	})
	var res model.AnswerResult
	_ = json.Unmarshal(env.Data, &res)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		body     any
		wantCode int
		wantErr  string
	}{
		{
			name: "no token", method: http.MethodGet, path: "/api/v1/quiz/next-question",
			wantCode: http.StatusUnauthorized, wantErr: "TOKEN_REQUIRED",
		},
		{
			name: "idor with otherwise invalid body", method: http.MethodPost, path: "/api/v1/quiz/answer", token: token,
			body: gin.H{"user_id": s.admin.ID}, wantCode: http.StatusForbidden, wantErr: "IDOR_BLOCKED",
		},
		{
			name: "idor with valid body", method: http.MethodPost, path: "/api/v1/quiz/answer", token: token,
			body: gin.H{
				"user_id": s.admin.ID, "subject_code": "M1", "topic_code": "ALG",
				"question_id": s.q2.ID, "selected_choice_id": choiceID(s.c2, "A"),
			},
			wantCode: http.StatusForbidden, wantErr: "IDOR_BLOCKED",
		},
		{
			name: "missing fields", method: http.MethodPost, path: "/api/v1/quiz/answer", token: token,
			body: gin.H{"subject_code": "M1"}, wantCode: http.StatusBadRequest, wantErr: "VALIDATION_ERROR",
		},
		{
			name: "foreign choice", method: http.MethodPost, path: "/api/v1/quiz/answer", token: token,
			body: gin.H{
				"subject_code": "M1", "topic_code": "ALG",
				"question_id": s.q2.ID, "selected_choice_id": choiceID(s.c1, "A"),
			},
			wantCode: http.StatusBadRequest, wantErr: "INVALID_CHOICE",
		},
		{
			name: "unknown question", method: http.MethodPost, path: "/api/v1/quiz/answer", token: token,
			body: gin.H{
				"subject_code": "M1", "topic_code": "ALG", "question_id": 99999, "selected_choice_id": 99999,
			},
			wantCode: http.StatusNotFound, wantErr: "NOT_FOUND",
		},
		{
			name: "attempt mismatch", method: http.MethodGet, token: token,
			path:     fmt.Sprintf("/api/v1/quiz/next-question?subject_code=M1&topic_code=GEN&attempt_id=%d", res.AttemptID),
			wantCode: http.StatusBadRequest, wantErr: "ATTEMPT_MISMATCH",
		},
		{
			name: "someone else's attempt", method: http.MethodGet, token: otherToken,
			path:     fmt.Sprintf("/api/v1/quiz/next-question?attempt_id=%d", res.AttemptID),
			wantCode: http.StatusNotFound, wantErr: "NOT_FOUND",
		},
		{
			name: "empty topic", method: http.MethodGet, token: token,
			path:     "/api/v1/quiz/next-question?subject_code=M1&topic_code=GEN",
			wantCode: http.StatusBadRequest, wantErr: "EMPTY_ATTEMPT",
		},
		{
			name: "unseeded exam", method: http.MethodGet, token: token,
			path:     "/api/v1/quiz/next-question?exam_code=SAT",
			wantCode: http.StatusBadRequest, wantErr: "EXAM_NOT_SEEDED",
		},
		{
			name: "bad attempt id", method: http.MethodGet, token: token,
			path:     "/api/v1/quiz/next-question?attempt_id=zero",
			wantCode: http.StatusBadRequest, wantErr: "VALIDATION_ERROR",
		},
		{
			name: "foreign stats", method: http.MethodGet, token: token,
			path:     fmt.Sprintf("/api/v1/users/%d/stats", s.admin.ID),
			wantCode: http.StatusForbidden, wantErr: "IDOR_BLOCKED",
		},
		{
			name: "foreign feedback", method: http.MethodGet, token: otherToken,
			path:     fmt.Sprintf("/api/v1/ai/feedback/%d", res.FeedbackID),
			wantCode: http.StatusNotFound, wantErr: "NOT_FOUND",
		},
		{
			name: "bad feedback id", method: http.MethodGet, token: token,
			path:     "/api/v1/ai/feedback/-1",
			wantCode: http.StatusBadRequest, wantErr: "INVALID_ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env, _ := s.do(tt.method, tt.path, tt.token, tt.body)
			if code != tt.wantCode || errorCode(env) != tt.wantErr {
				t.Fatalf("got %d %s, want %d %s", code, errorCode(env), tt.wantCode, tt.wantErr)
			}
		})
	}
}

func TestAdminQuestionRoutes(t *testing.T) {
	s := newTestServer(t)
	learnerToken := s.login("ana@example.com")
	adminToken := s.login("profe@example.com")

	question := gin.H{
		"subject_code": "M1",
		"topic_code":   "ALG",
		"prompt":       "Resuelve 3x = 12",
		"choices": []gin.H{
			{"label": "A", "text": "3"},
			{"label": "B", "text": "4"},
			{"label": "C", "text": "9"},
			{"label": "D", "text": "36"},
		},
		"correct_choice": "B",
	}

	if code, env, _ := s.do(http.MethodPost, "/api/v1/admin/questions", learnerToken, question); code != http.StatusForbidden || errorCode(env) != "ADMIN_ACCESS_ONLY" {
		t.Fatalf("learner create: %d %s", code, errorCode(env))
	}

	code, env, _ := s.do(http.MethodPost, "/api/v1/admin/questions", adminToken, question)
	if code != http.StatusCreated {
		t.Fatalf("admin create: %d %s %v", code, errorCode(env), env.Error)
	}

	question["choices"] = []gin.H{
		{"label": "A", "text": "3"},
		{"label": "A", "text": "4"},
		{"label": "C", "text": "9"},
		{"label": "D", "text": "36"},
	}
	if code, env, _ := s.do(http.MethodPost, "/api/v1/admin/questions", adminToken, question); code != http.StatusBadRequest || errorCode(env) != "INVALID_CHOICES" {
		t.Errorf("duplicate labels: %d %s", code, errorCode(env))
	}

	code, env, _ = s.do(http.MethodGet, "/api/v1/admin/questions/recent?limit=2", adminToken, nil)
	var recent struct {
		Questions []model.RecentQuestion `json:"questions"`
	}
	if err := json.Unmarshal(env.Data, &recent); err != nil || code != http.StatusOK || len(recent.Questions) != 2 {
		t.Fatalf("recent: %d %s", code, env.Data)
	}
	if recent.Questions[0].Prompt != "Resuelve 3x = 12" {
		t.Errorf("newest = %+v", recent.Questions[0])
	}

	if code, env, _ := s.do(http.MethodGet, "/api/v1/admin/questions/recent?limit=x", adminToken, nil); code != http.StatusBadRequest || errorCode(env) != "VALIDATION_ERROR" {
		t.Errorf("bad limit: %d %s", code, errorCode(env))
	}
}

func TestAdminSystemStatus(t *testing.T) {
	s := newTestServer(t)

	if code, env, _ := s.do(http.MethodGet, "/api/v1/admin/system/status", s.login("ana@example.com"), nil); code != http.StatusForbidden || errorCode(env) != "ADMIN_ACCESS_ONLY" {
		t.Fatalf("learner: %d %s", code, errorCode(env))
	}

	code, env, header := s.do(http.MethodGet, "/api/v1/admin/system/status", s.login("profe@example.com"), nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if cc := header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q", cc)
	}
	var status struct {
		GoVersion          string `json:"go_version"`
		Goroutines         int    `json:"goroutines"`
		ProgressQueueDepth int64  `json:"progress_queue_depth"`
	}
	if err := json.Unmarshal(env.Data, &status); err != nil {
		t.Fatal(err)
	}
	if status.GoVersion == "" || status.Goroutines == 0 {
		t.Errorf("runtime fields missing: %+v", status)
	}
	if status.ProgressQueueDepth != -1 {
		t.Errorf("queue depth without redis = %d, want -1", status.ProgressQueueDepth)
	}
}
