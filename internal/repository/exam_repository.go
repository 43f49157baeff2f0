package repository

import (
	"context"

	"github.com/AlbertPrograms/nodecs-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExamRepository handles exam corpus data access. Roster membership is
// the only corpus field this service mutates.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, name, start_min, start_max, duration_minutes, students, task_ids`

// GetByID retrieves a single exam.
func (r *ExamRepository) GetByID(ctx context.Context, id int64) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.StartMin, &e.StartMax, &e.DurationMinutes, &e.Students, &e.TaskIDs)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListUpcoming returns exams whose start window has not yet closed.
func (r *ExamRepository) ListUpcoming(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams WHERE start_max > NOW() ORDER BY start_min`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Name, &e.StartMin, &e.StartMax, &e.DurationMinutes, &e.Students, &e.TaskIDs); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// RegisterStudent appends a username to the roster if absent. Returns
// false if the student was already registered.
func (r *ExamRepository) RegisterStudent(ctx context.Context, examID int64, username string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET students = array_append(students, $2)
		 WHERE id = $1 AND NOT ($2 = ANY(students))`,
		examID, username)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UnregisterStudent removes a username from the roster. Returns false if
// the student was not registered.
func (r *ExamRepository) UnregisterStudent(ctx context.Context, examID int64, username string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET students = array_remove(students, $2)
		 WHERE id = $1 AND $2 = ANY(students)`,
		examID, username)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
