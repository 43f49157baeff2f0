package service

import (
	"context"
	"time"

	"github.com/AlbertPrograms/nodecs-backend/internal/executor"
	"github.com/AlbertPrograms/nodecs-backend/internal/model"
	"github.com/jackc/pgx/v5"
)

type fakeTaskRepo struct {
	tasks map[int64]model.Task
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id int64) (*model.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (f *fakeTaskRepo) ListPracticableIDs(context.Context) ([]int64, error) {
	var ids []int64
	for id, t := range f.tasks {
		if t.Practicable {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeExamRepo struct {
	exams map[int64]*model.Exam
}

func (f *fakeExamRepo) GetByID(_ context.Context, id int64) (*model.Exam, error) {
	e, ok := f.exams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	cp.Students = append([]string(nil), e.Students...)
	cp.TaskIDs = append([]int64(nil), e.TaskIDs...)
	return &cp, nil
}

func (f *fakeExamRepo) ListUpcoming(ctx context.Context) ([]model.Exam, error) {
	var out []model.Exam
	for _, e := range f.exams {
		if e.StartMax.After(time.Now()) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeExamRepo) RegisterStudent(_ context.Context, examID int64, username string) (bool, error) {
	e, ok := f.exams[examID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if e.HasStudent(username) {
		return false, nil
	}
	e.Students = append(e.Students, username)
	return true, nil
}

func (f *fakeExamRepo) UnregisterStudent(_ context.Context, examID int64, username string) (bool, error) {
	e, ok := f.exams[examID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	for i, s := range e.Students {
		if s == username {
			e.Students = append(e.Students[:i], e.Students[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeResultRepo struct {
	results   []model.ExamResult
	appendErr error
}

func (f *fakeResultRepo) Append(_ context.Context, res *model.ExamResult) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	res.ID = int64(len(f.results) + 1)
	f.results = append(f.results, *res)
	return nil
}

func (f *fakeResultRepo) ListAll(context.Context) ([]model.ExamResult, error) {
	return append([]model.ExamResult(nil), f.results...), nil
}

func (f *fakeResultRepo) ListByStudent(_ context.Context, username string) ([]model.ExamResult, error) {
	var out []model.ExamResult
	for _, r := range f.results {
		if r.StudentUsername == username {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResultRepo) StudentHasResult(_ context.Context, username string, examID int64) (bool, error) {
	for _, r := range f.results {
		if r.StudentUsername == username && r.ExamID == examID {
			return true, nil
		}
	}
	return false, nil
}

type fakeGrader struct {
	lastReq *executor.CompileAndRunRequest
	resp    *executor.CompileAndRunResponse
	err     error
}

func (f *fakeGrader) CompileAndRun(_ context.Context, req *executor.CompileAndRunRequest) (*executor.CompileAndRunResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func boolPtr(b bool) *bool { return &b }

func passingResult() executor.ExecutionResult {
	return executor.ExecutionResult{Code: 0, OutputMatchesExpectation: boolPtr(true)}
}

func passingResponse() *executor.CompileAndRunResponse {
	return &executor.CompileAndRunResponse{
		Results:       []executor.ExecutionResult{passingResult()},
		HiddenResults: []executor.ExecutionResult{passingResult()},
	}
}
