package repository

import (
	"context"

	"github.com/AlbertPrograms/nodecs-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepository handles task corpus data access.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// GetByID retrieves a task including its hidden test data.
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	t := &model.Task{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, description, test_data, expected_output,
		        hidden_test_data, hidden_expected_output, point_value, practicable
		 FROM tasks
		 WHERE id = $1`, id,
	).Scan(&t.ID, &t.Description, &t.TestData, &t.ExpectedOutput,
		&t.HiddenTestData, &t.HiddenExpectedOutput, &t.PointValue, &t.Practicable)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListPracticableIDs returns the ids of all tasks flagged practicable.
func (r *TaskRepository) ListPracticableIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM tasks WHERE practicable ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
