package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlbertPrograms/nodecs-backend/internal/executor"
	"github.com/AlbertPrograms/nodecs-backend/internal/model"
	"github.com/AlbertPrograms/nodecs-backend/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// TaskView is the client-facing shape of an issued task: description and
// visible cases only, plus the token and any previously saved code.
type TaskView struct {
	TaskID         int64    `json:"task_id"`
	Description    string   `json:"description"`
	TestData       []string `json:"test_data,omitempty"`
	ExpectedOutput []string `json:"expected_output"`
	Token          string   `json:"token"`
	SavedCode      string   `json:"saved_code"`
}

// SubmitView is the client-facing grading outcome: visible case results
// and the overall verdict. Hidden case contents never leave the server.
type SubmitView struct {
	Results []executor.ExecutionResult `json:"results"`
	Success bool                       `json:"success"`
}

// TaskService owns the task token registry: issuance, resumption,
// progress caching and practice/testing grading.
type TaskService struct {
	tokens   *store.TokenStore
	tasks    TaskRepo
	grader   Grader
	tokenTTL time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(tokens *store.TokenStore, tasks TaskRepo, grader Grader, tokenTTL time.Duration, log zerolog.Logger) *TaskService {
	return &TaskService{
		tokens:   tokens,
		tasks:    tasks,
		grader:   grader,
		tokenTTL: tokenTTL,
		log:      log.With().Str("component", "task_service").Logger(),
		now:      time.Now,
	}
}

// GetTask serves a task for practice or testing mode. An uncompleted
// request for the same (identity, mode) resumes the live token; issuing
// a fresh one invalidates the prior.
func (s *TaskService) GetTask(ctx context.Context, identity model.Identity, mode model.TaskMode, taskID *int64) (*TaskView, error) {
	strategy, err := s.strategyFor(mode)
	if err != nil {
		return nil, err
	}

	if existing, ok := s.tokens.GetByOwnerMode(identity.Username, mode); ok && strategy.resumable(existing, taskID) {
		task, err := s.loadTask(ctx, existing.TaskID)
		if err != nil {
			return nil, err
		}
		return viewFor(task, existing), nil
	}

	id, err := strategy.pick(ctx, identity, taskID)
	if err != nil {
		return nil, err
	}
	task, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}

	token := model.TaskToken{
		Token:     store.NewTokenString(),
		Owner:     identity.Username,
		TaskID:    task.ID,
		Mode:      mode,
		ExpiresAt: s.now().Add(s.tokenTTL),
	}
	s.tokens.Put(token)

	s.log.Debug().
		Str("username", identity.Username).
		Str("mode", string(mode)).
		Int64("task_id", task.ID).
		Msg("Task token issued")

	return viewFor(task, token), nil
}

// StoreProgress overwrites the token's cached code. Pure side effect, no
// grading. Autosave callers should log failures, not drop them.
func (s *TaskService) StoreProgress(identity model.Identity, tokenString, code string) error {
	if _, err := s.resolve(tokenString, identity); err != nil {
		return err
	}
	if !s.tokens.StoreProgress(tokenString, code) {
		return fmt.Errorf("%w: token expired during save", ErrNotFound)
	}
	return nil
}

// Submit grades the code against the token's task. On success the token
// is destroyed (task completed); on a failed verdict the submission is
// kept as saved code so the student can continue. An upstream failure
// changes nothing.
func (s *TaskService) Submit(ctx context.Context, identity model.Identity, tokenString, code string) (*SubmitView, error) {
	token, err := s.resolve(tokenString, identity)
	if err != nil {
		return nil, err
	}

	task, err := s.loadTask(ctx, token.TaskID)
	if err != nil {
		return nil, err
	}

	resp, err := runGrading(ctx, s.grader, task, code)
	if err != nil {
		return nil, err
	}

	success := resp.AllPassed()
	if success {
		s.tokens.Delete(tokenString)
	} else {
		s.tokens.StoreProgress(tokenString, code)
	}

	s.log.Info().
		Str("username", identity.Username).
		Int64("task_id", task.ID).
		Bool("success", success).
		Msg("Task submission graded")

	return &SubmitView{Results: resp.Results, Success: success}, nil
}

// resolve looks a token up and enforces ownership.
func (s *TaskService) resolve(tokenString string, requester model.Identity) (model.TaskToken, error) {
	token, ok := s.tokens.Get(tokenString)
	if !ok {
		return model.TaskToken{}, fmt.Errorf("%w: unknown task token", ErrNotFound)
	}
	if token.Owner != requester.Username {
		return model.TaskToken{}, fmt.Errorf("%w: token belongs to another user", ErrForbidden)
	}
	return token, nil
}

func (s *TaskService) loadTask(ctx context.Context, id int64) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return task, nil
}

func viewFor(task *model.Task, token model.TaskToken) *TaskView {
	return &TaskView{
		TaskID:         task.ID,
		Description:    task.Description,
		TestData:       task.TestData,
		ExpectedOutput: task.ExpectedOutput,
		Token:          token.Token,
		SavedCode:      token.SavedCode,
	}
}
