package repository

import (
	"context"

	"github.com/AlbertPrograms/nodecs-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultRepository handles the append-only exam result archive.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Append inserts a finished exam outcome and assigns its id from the
// sequence. Results are never updated or deleted afterwards.
func (r *ResultRepository) Append(ctx context.Context, res *model.ExamResult) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_results (exam_id, student_username, solutions, successes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		res.ExamID, res.StudentUsername, res.Solutions, res.Successes,
	).Scan(&res.ID)
}

const resultColumns = `id, exam_id, student_username, solutions, successes`

// ListAll returns every archived result, newest first.
func (r *ResultRepository) ListAll(ctx context.Context) ([]model.ExamResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM exam_results ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResults(rows)
}

// ListByStudent returns the archived results owned by one student.
func (r *ResultRepository) ListByStudent(ctx context.Context, username string) ([]model.ExamResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM exam_results
		 WHERE student_username = $1
		 ORDER BY id DESC`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResults(rows)
}

// StudentHasResult reports whether the student already completed the exam.
func (r *ResultRepository) StudentHasResult(ctx context.Context, username string, examID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		    SELECT 1 FROM exam_results
		    WHERE student_username = $1 AND exam_id = $2
		 )`, username, examID,
	).Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanResults(rows rowScanner) ([]model.ExamResult, error) {
	var results []model.ExamResult
	for rows.Next() {
		var res model.ExamResult
		if err := rows.Scan(&res.ID, &res.ExamID, &res.StudentUsername, &res.Solutions, &res.Successes); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
