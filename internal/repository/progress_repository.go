package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tutorpaes/tutor-backend/internal/model"
)

// ProgressRepository maintains the user_progress projection.
type ProgressRepository struct {
	pool *pgxpool.Pool
}

func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

const progressUpsert = `
	INSERT INTO user_progress AS p
		(user_id, topic_id, attempts_completed, questions_answered, correct_answers, accuracy, best_score, last_activity_at)
	SELECT
		u.user_id, u.topic_id, u.attempts, u.total, u.correct,
		CASE WHEN u.total > 0 THEN u.correct::float8 * 100 / u.total ELSE 0 END,
		u.score, u.completed_at
	FROM UNNEST(
		$1::bigint[],
		$2::bigint[],
		$3::int[],
		$4::int[],
		$5::int[],
		$6::int[],
		$7::timestamptz[]
	) AS u (user_id, topic_id, attempts, total, correct, score, completed_at)
	ON CONFLICT (user_id, topic_id) DO UPDATE SET
		attempts_completed = p.attempts_completed + EXCLUDED.attempts_completed,
		questions_answered = p.questions_answered + EXCLUDED.questions_answered,
		correct_answers    = p.correct_answers + EXCLUDED.correct_answers,
		accuracy = CASE
			WHEN p.questions_answered + EXCLUDED.questions_answered > 0
			THEN (p.correct_answers + EXCLUDED.correct_answers)::float8 * 100
				/ (p.questions_answered + EXCLUDED.questions_answered)
			ELSE 0 END,
		best_score       = GREATEST(COALESCE(p.best_score, 0), EXCLUDED.best_score),
		last_activity_at = GREATEST(p.last_activity_at, EXCLUDED.last_activity_at),
		updated_at       = NOW()
`

type progressKey struct {
	userID, topicID int64
}

// BulkApply folds a batch of completion events into user_progress. Events
// for the same (user, topic) are merged first so the upsert touches each
// row once.
func (r *ProgressRepository) BulkApply(ctx context.Context, events []*model.ProgressEvent) error {
	type agg struct {
		attempts, total, correct, best int
		last                           time.Time
	}
	merged := make(map[progressKey]*agg, len(events))
	order := make([]progressKey, 0, len(events))
	for _, e := range events {
		k := progressKey{e.UserID, e.TopicID}
		a, ok := merged[k]
		if !ok {
			a = &agg{}
			merged[k] = a
			order = append(order, k)
		}
		a.attempts++
		a.total += e.TotalQuestions
		a.correct += e.CorrectCount
		a.best = max(a.best, e.Score)
		if e.CompletedAt.After(a.last) {
			a.last = e.CompletedAt
		}
	}

	n := len(order)
	users := make([]int64, 0, n)
	topics := make([]int64, 0, n)
	attempts := make([]int, 0, n)
	totals := make([]int, 0, n)
	corrects := make([]int, 0, n)
	scores := make([]int, 0, n)
	completedAts := make([]time.Time, 0, n)

	for _, k := range order {
		a := merged[k]
		users = append(users, k.userID)
		topics = append(topics, k.topicID)
		attempts = append(attempts, a.attempts)
		totals = append(totals, a.total)
		corrects = append(corrects, a.correct)
		scores = append(scores, a.best)
		completedAts = append(completedAts, a.last)
	}

	_, err := r.pool.Exec(ctx, progressUpsert, users, topics, attempts, totals, corrects, scores, completedAts)
	return err
}

// Apply folds a single completion event into user_progress.
func (r *ProgressRepository) Apply(ctx context.Context, e *model.ProgressEvent) error {
	return r.BulkApply(ctx, []*model.ProgressEvent{e})
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID int64) ([]model.UserProgress, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, topic_id, attempts_completed, questions_answered, correct_answers,
		        accuracy, best_score, last_activity_at
		 FROM user_progress WHERE user_id = $1 ORDER BY topic_id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UserProgress
	for rows.Next() {
		var p model.UserProgress
		if err := rows.Scan(&p.UserID, &p.TopicID, &p.AttemptsCompleted, &p.QuestionsAnswered,
			&p.CorrectAnswers, &p.Accuracy, &p.BestScore, &p.LastActivityAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
