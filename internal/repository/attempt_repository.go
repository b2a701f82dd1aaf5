package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tutorpaes/tutor-backend/internal/model"
)

const attemptColumns = `id, user_id, exam_id, subject_id, topic_id, status::text, started_at, completed_at, total_questions, correct_count, score`

// AttemptRepository handles attempts and their answer records.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

func scanAttempt(row pgx.Row) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := row.Scan(&a.ID, &a.UserID, &a.ExamID, &a.SubjectID, &a.TopicID, &a.Status,
		&a.StartedAt, &a.CompletedAt, &a.TotalQuestions, &a.CorrectCount, &a.Score)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (r *AttemptRepository) GetAttempt(ctx context.Context, id int64) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE id = $1`, id))
}

// FindInProgress returns the in-progress attempt for the triple, or ErrNotFound.
func (r *AttemptRepository) FindInProgress(ctx context.Context, userID int64, t *model.Triple) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts
		 WHERE user_id = $1 AND exam_id = $2 AND subject_id = $3 AND topic_id = $4
		   AND status = 'in_progress'
		 ORDER BY id DESC
		 LIMIT 1`,
		userID, t.Exam.ID, t.Subject.ID, t.Topic.ID))
}

// CreateAttempt starts an attempt for the triple. When another request won
// the race the existing in-progress attempt is returned instead.
func (r *AttemptRepository) CreateAttempt(ctx context.Context, userID int64, t *model.Triple) (*model.Attempt, error) {
	a, err := scanAttempt(r.pool.QueryRow(ctx,
		`INSERT INTO attempts (user_id, exam_id, subject_id, topic_id, status)
		 VALUES ($1, $2, $3, $4, 'in_progress')
		 ON CONFLICT (user_id, exam_id, subject_id, topic_id) WHERE status = 'in_progress' DO NOTHING
		 RETURNING `+attemptColumns,
		userID, t.Exam.ID, t.Subject.ID, t.Topic.ID))
	if errors.Is(err, ErrNotFound) {
		return r.FindInProgress(ctx, userID, t)
	}
	return a, err
}

// CompleteAttempt moves an in-progress attempt with at least one answer to
// completed and stamps its score. The boolean reports whether this call did
// the transition; otherwise the attempt is returned as currently stored.
func (r *AttemptRepository) CompleteAttempt(ctx context.Context, id int64) (*model.Attempt, bool, error) {
	a, err := scanAttempt(r.pool.QueryRow(ctx,
		`UPDATE attempts
		 SET status = 'completed',
		     completed_at = NOW(),
		     score = correct_count * 1000 / total_questions
		 WHERE id = $1 AND status = 'in_progress' AND total_questions > 0
		 RETURNING `+attemptColumns, id))
	if err == nil {
		return a, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	a, err = r.GetAttempt(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return a, false, nil
}

func (r *AttemptRepository) ListAttemptsByUser(ctx context.Context, userID int64) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE user_id = $1 ORDER BY id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	return attempts, rows.Err()
}

// ─── Answer records ─────────────────────────────────────────────────

const answerColumns = `id, attempt_id, question_id, selected_choice_id, is_correct, feedback_text, extra_payload, created_at`

func scanAnswer(row pgx.Row) (*model.AnswerRecord, error) {
	rec := &model.AnswerRecord{}
	var payload []byte
	err := row.Scan(&rec.ID, &rec.AttemptID, &rec.QuestionID, &rec.SelectedChoiceID,
		&rec.IsCorrect, &rec.FeedbackText, &payload, &rec.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	rec.ExtraPayload = json.RawMessage(payload)
	return rec, nil
}

func (r *AttemptRepository) GetAnswer(ctx context.Context, attemptID, questionID int64) (*model.AnswerRecord, error) {
	return scanAnswer(r.pool.QueryRow(ctx,
		`SELECT `+answerColumns+` FROM answer_records WHERE attempt_id = $1 AND question_id = $2`,
		attemptID, questionID))
}

func (r *AttemptRepository) GetAnswerByID(ctx context.Context, id int64) (*model.AnswerRecord, error) {
	return scanAnswer(r.pool.QueryRow(ctx,
		`SELECT `+answerColumns+` FROM answer_records WHERE id = $1`, id))
}

// AnsweredQuestionIDs returns the set of questions already graded in an attempt.
func (r *AttemptRepository) AnsweredQuestionIDs(ctx context.Context, attemptID int64) (map[int64]struct{}, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id FROM answer_records WHERE attempt_id = $1`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// HasRemainingQuestions reports whether any active question of the topic
// has not been answered in the attempt.
func (r *AttemptRepository) HasRemainingQuestions(ctx context.Context, attemptID, topicID int64) (bool, error) {
	var remaining bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM questions q
			WHERE q.topic_id = $2 AND q.is_active
			  AND NOT EXISTS (
				SELECT 1 FROM answer_records ar
				WHERE ar.attempt_id = $1 AND ar.question_id = q.id
			  )
		)`, attemptID, topicID,
	).Scan(&remaining)
	return remaining, err
}

// InsertAnswer stores the record and bumps the attempt counters atomically.
// Returns ErrDuplicateAnswer if the question already has a record in the
// attempt and ErrAttemptClosed if the attempt is no longer in progress.
func (r *AttemptRepository) InsertAnswer(ctx context.Context, rec *model.AnswerRecord) error {
	payload := rec.ExtraPayload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// extra_payload is read back in its normalized JSONB form so the first
	// response matches what later duplicate lookups return.
	var stored []byte
	err = tx.QueryRow(ctx,
		`INSERT INTO answer_records (attempt_id, question_id, selected_choice_id, is_correct, feedback_text, extra_payload)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb)
		 ON CONFLICT (attempt_id, question_id) DO NOTHING
		 RETURNING id, extra_payload, created_at`,
		rec.AttemptID, rec.QuestionID, rec.SelectedChoiceID, rec.IsCorrect, rec.FeedbackText, string(payload),
	).Scan(&rec.ID, &stored, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicateAnswer
	}
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAnswer
		}
		return fmt.Errorf("insert answer record: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE attempts
		 SET total_questions = total_questions + 1,
		     correct_count = correct_count + CASE WHEN $2 THEN 1 ELSE 0 END
		 WHERE id = $1 AND status = 'in_progress'`,
		rec.AttemptID, rec.IsCorrect)
	if err != nil {
		return fmt.Errorf("update attempt counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAttemptClosed
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit answer: %w", err)
	}
	rec.ExtraPayload = json.RawMessage(stored)
	return nil
}
