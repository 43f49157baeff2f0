package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlbertPrograms/nodecs-backend/internal/executor"
	"github.com/AlbertPrograms/nodecs-backend/internal/model"
)

// runGrading performs one compile-and-run round trip for a task, mapping
// executor failures to the service taxonomy. A non-nil error guarantees
// no session or token state was mutated, so callers can surface it as
// retryable.
func runGrading(ctx context.Context, g Grader, task *model.Task, code string) (*executor.CompileAndRunResponse, error) {
	resp, err := g.CompileAndRun(ctx, &executor.CompileAndRunRequest{
		Code:                 code,
		TestData:             task.TestData,
		ExpectedOutput:       task.ExpectedOutput,
		HiddenTestData:       task.HiddenTestData,
		HiddenExpectedOutput: task.HiddenExpectedOutput,
	})
	if err != nil {
		switch {
		case errors.Is(err, executor.ErrTimedOut):
			return nil, fmt.Errorf("%w: %v", ErrTimedOut, err)
		case errors.Is(err, executor.ErrUnavailable):
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return nil, fmt.Errorf("compile and run: %w", err)
	}
	return resp, nil
}
