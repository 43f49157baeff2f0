package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/AlbertPrograms/nodecs-backend/internal/model"
)

// modeStrategy localizes per-mode task selection, privilege checks and
// resumability. One implementation per mode, chosen by strategyFor.
// Exam-mode selection is not a strategy here: it is delegated to the
// exam lifecycle's active-task cursor.
type modeStrategy interface {
	// resumable reports whether an existing live token satisfies the
	// request, so the caller returns it instead of issuing a new one.
	resumable(existing model.TaskToken, taskID *int64) bool
	// pick chooses the task id for a freshly issued token.
	pick(ctx context.Context, identity model.Identity, taskID *int64) (int64, error)
}

func (s *TaskService) strategyFor(mode model.TaskMode) (modeStrategy, error) {
	switch mode {
	case model.ModePractice:
		return &practiceStrategy{tasks: s.tasks}, nil
	case model.ModeTesting:
		return &testingStrategy{tasks: s.tasks}, nil
	case model.ModeExam:
		// Exam tasks are navigated through the session cursor.
		return nil, fmt.Errorf("%w: exam tasks are served by the exam session", ErrBadRequest)
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrBadRequest, mode)
	}
}

// practiceStrategy samples uniformly among practicable tasks. A student
// re-requesting without completing gets their live token back, keeping
// the same task and saved code.
type practiceStrategy struct {
	tasks TaskRepo
}

func (p *practiceStrategy) resumable(model.TaskToken, *int64) bool {
	return true
}

func (p *practiceStrategy) pick(ctx context.Context, _ model.Identity, _ *int64) (int64, error) {
	ids, err := p.tasks.ListPracticableIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list practicable tasks: %w", err)
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no practicable tasks", ErrNotFound)
	}
	return ids[rand.IntN(len(ids))], nil
}

// testingStrategy serves an explicit task id to teachers and admins.
type testingStrategy struct {
	tasks TaskRepo
}

func (t *testingStrategy) resumable(existing model.TaskToken, taskID *int64) bool {
	// Reuse only when the caller asks for the same task again.
	return taskID != nil && existing.TaskID == *taskID
}

func (t *testingStrategy) pick(ctx context.Context, identity model.Identity, taskID *int64) (int64, error) {
	if !identity.CanTest() {
		return 0, fmt.Errorf("%w: testing mode requires teacher or admin", ErrForbidden)
	}
	if taskID == nil {
		return 0, fmt.Errorf("%w: testing mode requires a task id", ErrBadRequest)
	}
	return *taskID, nil
}
