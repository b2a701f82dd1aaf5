package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tutorpaes/tutor-backend/internal/model"
)

const questionColumns = `id, topic_id, prompt, reading_text, explanation, difficulty, question_type, is_active, created_at`

// QuestionRepository handles questions and their choices.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func (r *QuestionRepository) GetQuestion(ctx context.Context, id int64) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.TopicID, &q.Prompt, &q.ReadingText, &q.Explanation, &q.Difficulty, &q.QuestionType, &q.IsActive, &q.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return q, nil
}

func (r *QuestionRepository) GetChoice(ctx context.Context, id int64) (*model.Choice, error) {
	c := &model.Choice{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, question_id, label, text, is_correct FROM question_choices WHERE id = $1`, id,
	).Scan(&c.ID, &c.QuestionID, &c.Label, &c.Text, &c.IsCorrect)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// ListChoices returns a question's choices in label order.
func (r *QuestionRepository) ListChoices(ctx context.Context, questionID int64) ([]model.Choice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, question_id, label, text, is_correct
		 FROM question_choices WHERE question_id = $1 ORDER BY label ASC`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var choices []model.Choice
	for rows.Next() {
		var c model.Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.Label, &c.Text, &c.IsCorrect); err != nil {
			return nil, err
		}
		choices = append(choices, c)
	}
	return choices, rows.Err()
}

// ListActiveQuestions returns every selectable question of a topic.
func (r *QuestionRepository) ListActiveQuestions(ctx context.Context, topicID int64) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE topic_id = $1 AND is_active ORDER BY id ASC`, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.TopicID, &q.Prompt, &q.ReadingText, &q.Explanation, &q.Difficulty, &q.QuestionType, &q.IsActive, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// CreateQuestion inserts a question and its choices in one transaction.
func (r *QuestionRepository) CreateQuestion(ctx context.Context, q *model.Question, choices []model.Choice) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	err = tx.QueryRow(ctx,
		`INSERT INTO questions (topic_id, prompt, reading_text, explanation, difficulty, question_type, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		q.TopicID, q.Prompt, q.ReadingText, q.Explanation, q.Difficulty, q.QuestionType, q.IsActive,
	).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}

	for i := range choices {
		choices[i].QuestionID = q.ID
		err := tx.QueryRow(ctx,
			`INSERT INTO question_choices (question_id, label, text, is_correct)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			q.ID, choices[i].Label, choices[i].Text, choices[i].IsCorrect,
		).Scan(&choices[i].ID)
		if err != nil {
			return fmt.Errorf("insert choice %s: %w", choices[i].Label, err)
		}
	}

	return tx.Commit(ctx)
}

// ListRecentQuestions returns the newest questions with their catalog codes.
func (r *QuestionRepository) ListRecentQuestions(ctx context.Context, limit int) ([]model.RecentQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, s.code, t.code, q.prompt, q.reading_text, q.difficulty, q.created_at
		 FROM questions q
		 JOIN topics t ON t.id = q.topic_id
		 JOIN subjects s ON s.id = t.subject_id
		 ORDER BY q.created_at DESC, q.id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RecentQuestion
	for rows.Next() {
		var rq model.RecentQuestion
		if err := rows.Scan(&rq.QuestionID, &rq.SubjectCode, &rq.TopicCode, &rq.Prompt, &rq.ReadingText, &rq.Difficulty, &rq.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rq)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		choices, err := r.ListChoices(ctx, out[i].QuestionID)
		if err != nil {
			return nil, err
		}
		out[i].Choices = make([]model.PublicChoice, 0, len(choices))
		for _, c := range choices {
			out[i].Choices = append(out[i].Choices, model.PublicChoice{ID: c.ID, Label: c.Label, Text: c.Text})
		}
	}
	return out, nil
}
