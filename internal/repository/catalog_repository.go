package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tutorpaes/tutor-backend/internal/model"
)

// CatalogRepository provides read access to exams, subjects and topics.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) GetExamByCode(ctx context.Context, code string) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name FROM exams WHERE code = $1`, code,
	).Scan(&e.ID, &e.Code, &e.Name)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *CatalogRepository) GetSubjectByCode(ctx context.Context, examID int64, code string) (*model.Subject, error) {
	s := &model.Subject{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, code, name FROM subjects WHERE exam_id = $1 AND code = $2`, examID, code,
	).Scan(&s.ID, &s.ExamID, &s.Code, &s.Name)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *CatalogRepository) GetTopicByCode(ctx context.Context, subjectID int64, code string) (*model.Topic, error) {
	t := &model.Topic{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, subject_id, code, name FROM topics WHERE subject_id = $1 AND code = $2`, subjectID, code,
	).Scan(&t.ID, &t.SubjectID, &t.Code, &t.Name)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (r *CatalogRepository) GetTopic(ctx context.Context, id int64) (*model.Topic, error) {
	t := &model.Topic{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, subject_id, code, name FROM topics WHERE id = $1`, id,
	).Scan(&t.ID, &t.SubjectID, &t.Code, &t.Name)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (r *CatalogRepository) ListExams(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, name FROM exams ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Code, &e.Name); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

func (r *CatalogRepository) ListSubjects(ctx context.Context, examID int64) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, code, name FROM subjects WHERE exam_id = $1 ORDER BY id ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.ExamID, &s.Code, &s.Name); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *CatalogRepository) ListTopics(ctx context.Context, subjectID int64) ([]model.Topic, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, subject_id, code, name FROM topics WHERE subject_id = $1 ORDER BY id ASC`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []model.Topic
	for rows.Next() {
		var t model.Topic
		if err := rows.Scan(&t.ID, &t.SubjectID, &t.Code, &t.Name); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// UpsertExam creates the exam if missing and returns it. Used by the seeder.
func (r *CatalogRepository) UpsertExam(ctx context.Context, code, name string) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exams (code, name) VALUES ($1, $2)
		 ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, code, name`, code, name,
	).Scan(&e.ID, &e.Code, &e.Name)
	return e, err
}

func (r *CatalogRepository) UpsertSubject(ctx context.Context, examID int64, code, name string) (*model.Subject, error) {
	s := &model.Subject{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO subjects (exam_id, code, name) VALUES ($1, $2, $3)
		 ON CONFLICT (exam_id, code) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, exam_id, code, name`, examID, code, name,
	).Scan(&s.ID, &s.ExamID, &s.Code, &s.Name)
	return s, err
}

func (r *CatalogRepository) UpsertTopic(ctx context.Context, subjectID int64, code, name string) (*model.Topic, error) {
	t := &model.Topic{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO topics (subject_id, code, name) VALUES ($1, $2, $3)
		 ON CONFLICT (subject_id, code) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, subject_id, code, name`, subjectID, code, name,
	).Scan(&t.ID, &t.SubjectID, &t.Code, &t.Name)
	return t, err
}
