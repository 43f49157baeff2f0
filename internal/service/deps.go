package service

import (
	"context"

	"github.com/AlbertPrograms/nodecs-backend/internal/executor"
	"github.com/AlbertPrograms/nodecs-backend/internal/model"
)

// TaskRepo is the corpus read surface for tasks.
type TaskRepo interface {
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	ListPracticableIDs(ctx context.Context) ([]int64, error)
}

// ExamRepo is the corpus surface for exams. Roster membership is the
// only mutation.
type ExamRepo interface {
	GetByID(ctx context.Context, id int64) (*model.Exam, error)
	ListUpcoming(ctx context.Context) ([]model.Exam, error)
	RegisterStudent(ctx context.Context, examID int64, username string) (bool, error)
	UnregisterStudent(ctx context.Context, examID int64, username string) (bool, error)
}

// ResultRepo is the append-only result archive surface.
type ResultRepo interface {
	Append(ctx context.Context, res *model.ExamResult) error
	ListAll(ctx context.Context) ([]model.ExamResult, error)
	ListByStudent(ctx context.Context, username string) ([]model.ExamResult, error)
	StudentHasResult(ctx context.Context, username string, examID int64) (bool, error)
}

// Grader sends code plus test data to the execution service.
type Grader interface {
	CompileAndRun(ctx context.Context, req *executor.CompileAndRunRequest) (*executor.CompileAndRunResponse, error)
}
