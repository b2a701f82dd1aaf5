package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/tutorpaes/tutor-backend/internal/config"
	"github.com/tutorpaes/tutor-backend/internal/database"
	"github.com/tutorpaes/tutor-backend/internal/logger"
	"github.com/tutorpaes/tutor-backend/internal/model"
	"github.com/tutorpaes/tutor-backend/internal/repository"
	"github.com/tutorpaes/tutor-backend/internal/service"
)

type topicSeed struct {
	code, name string
}

type subjectSeed struct {
	code, name string
	topics     []topicSeed
}

var paesSubjects = []subjectSeed{
	{"LECT", "Competencia Lectora", []topicSeed{{"GEN", "General"}}},
	{"M1", "Competencia Matemática 1", []topicSeed{{"GEN", "General"}, {"ALG", "Álgebra y funciones"}}},
	{"M2", "Competencia Matemática 2", []topicSeed{{"GEN", "General"}}},
	{"CIEN", "Ciencias", []topicSeed{{"GEN", "General"}}},
	{"HIST", "Historia y Ciencias Sociales", []topicSeed{{"GEN", "General"}}},
}

var demoQuestions = []model.CreateQuestionRequest{
	{
		SubjectCode: "M1",
		TopicCode:   "ALG",
		Prompt:      "Si 2x + 3 = 11, ¿cuál es el valor de x?",
		Difficulty:  1,
		Choices: []model.ChoiceInput{
			{Label: "A", Text: "3"},
			{Label: "B", Text: "4"},
			{Label: "C", Text: "5"},
			{Label: "D", Text: "7"},
		},
		CorrectChoice: "B",
	},
	{
		SubjectCode: "M1",
		TopicCode:   "ALG",
		Prompt:      "¿Cuál es la pendiente de la recta y = 3x - 2?",
		Difficulty:  1,
		Choices: []model.ChoiceInput{
			{Label: "A", Text: "3"},
			{Label: "B", Text: "-2"},
			{Label: "C", Text: "2"},
			{Label: "D", Text: "-3"},
		},
		CorrectChoice: "A",
	},
}

func main() {
	var withDemo bool
	flag.BoolVar(&withDemo, "demo", false, "Also insert sample questions into M1/ALG")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	catalogRepo := repository.NewCatalogRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)

	fmt.Printf("=== Seeding catalog for exam %s ===\n", cfg.ExamCode)

	exam, err := catalogRepo.UpsertExam(ctx, cfg.ExamCode, "Prueba de Acceso a la Educación Superior")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to upsert exam")
	}

	topicCount := 0
	for _, ss := range paesSubjects {
		subject, err := catalogRepo.UpsertSubject(ctx, exam.ID, ss.code, ss.name)
		if err != nil {
			log.Fatal().Err(err).Str("subject", ss.code).Msg("Failed to upsert subject")
		}
		for _, ts := range ss.topics {
			if _, err := catalogRepo.UpsertTopic(ctx, subject.ID, ts.code, ts.name); err != nil {
				log.Fatal().Err(err).Str("subject", ss.code).Str("topic", ts.code).Msg("Failed to upsert topic")
			}
			topicCount++
		}
		fmt.Printf("Subject %s ready (%d topics)\n", ss.code, len(ss.topics))
	}

	fmt.Printf("\nCatalog ready: exam %s (ID %d), %d subjects, %d topics.\n",
		exam.Code, exam.ID, len(paesSubjects), topicCount)

	if !withDemo {
		return
	}

	// The Redis cache is not needed for a one-shot seed.
	catalogService := service.NewCatalogService(catalogRepo, questionRepo, nil, 0, log)
	questionService := service.NewQuestionService(catalogService, questionRepo, cfg.ExamCode, log)

	created := 0
	for i := range demoQuestions {
		q, err := questionService.Create(ctx, &demoQuestions[i])
		if err != nil {
			if errors.Is(err, service.ErrNotSeeded) {
				log.Fatal().Err(err).Msg("Catalog disappeared while seeding")
			}
			fmt.Printf("Error creating demo question %d: %v\n", i+1, err)
			continue
		}
		created++
		fmt.Printf("Created question %d in %s/%s (correct %s)\n", q.QuestionID, q.SubjectCode, q.TopicCode, q.CorrectChoice)
	}

	fmt.Printf("\nDemo seed completed! Added %d/%d questions.\n", created, len(demoQuestions))
}
