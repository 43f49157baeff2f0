package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlbertPrograms/nodecs-backend/internal/model"
	"github.com/AlbertPrograms/nodecs-backend/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ExamTaskView is one exam task as served to the student: description,
// visible cases and the code previously saved for that slot.
type ExamTaskView struct {
	Index          int      `json:"index"`
	TaskCount      int      `json:"task_count"`
	Description    string   `json:"description"`
	TestData       []string `json:"test_data,omitempty"`
	ExpectedOutput []string `json:"expected_output"`
	SavedCode      string   `json:"saved_code"`
}

// ExamService owns the exam lifecycle: registration windows, live
// sessions, per-task navigation and finalization into results.
//
// Per (identity, exam) the state machine is
// Unregistered → Registered → Active(Session) → Finished.
type ExamService struct {
	sessions *store.SessionStore
	exams    ExamRepo
	tasks    TaskRepo
	results  ResultRepo
	grader   Grader
	log      zerolog.Logger
	now      func() time.Time
}

// NewExamService creates a new ExamService.
func NewExamService(sessions *store.SessionStore, exams ExamRepo, tasks TaskRepo, results ResultRepo, grader Grader, log zerolog.Logger) *ExamService {
	return &ExamService{
		sessions: sessions,
		exams:    exams,
		tasks:    tasks,
		results:  results,
		grader:   grader,
		log:      log.With().Str("component", "exam_service").Logger(),
		now:      time.Now,
	}
}

// GetAvailableExams lists exams whose start window has not closed and
// which the identity has not already completed, annotated with the
// registration window flags.
func (s *ExamService) GetAvailableExams(ctx context.Context, identity model.Identity) ([]model.AvailableExam, error) {
	exams, err := s.exams.ListUpcoming(ctx)
	if err != nil {
		return nil, fmt.Errorf("list upcoming exams: %w", err)
	}

	now := s.now()
	available := make([]model.AvailableExam, 0, len(exams))
	for i := range exams {
		e := &exams[i]

		done, err := s.results.StudentHasResult(ctx, identity.Username, e.ID)
		if err != nil {
			return nil, fmt.Errorf("check prior result: %w", err)
		}
		if done {
			continue
		}

		available = append(available, model.AvailableExam{
			ID:              e.ID,
			Name:            e.Name,
			StartMin:        e.StartMin,
			StartMax:        e.StartMax,
			DurationMinutes: e.DurationMinutes,
			Registered:      e.HasStudent(identity.Username),
			CanRegister:     e.CanRegister(now),
			CanUnregister:   e.CanUnregister(now),
		})
	}
	return available, nil
}

// Register adds the identity to the exam roster. Closes 24 hours before
// the earliest start; the gate never re-opens.
func (s *ExamService) Register(ctx context.Context, identity model.Identity, examID int64) error {
	exam, err := s.loadExam(ctx, examID)
	if err != nil {
		return err
	}
	if exam.HasStudent(identity.Username) {
		return fmt.Errorf("%w: already registered", ErrConflict)
	}
	if !exam.CanRegister(s.now()) {
		return fmt.Errorf("%w: registration closed", ErrForbidden)
	}

	ok, err := s.exams.RegisterStudent(ctx, examID, identity.Username)
	if err != nil {
		return fmt.Errorf("register student: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: already registered", ErrConflict)
	}

	s.log.Info().Str("username", identity.Username).Int64("exam_id", examID).Msg("Student registered")
	return nil
}

// Unregister removes the identity from the roster. Closes 36 hours
// before the earliest start.
func (s *ExamService) Unregister(ctx context.Context, identity model.Identity, examID int64) error {
	exam, err := s.loadExam(ctx, examID)
	if err != nil {
		return err
	}
	if !exam.HasStudent(identity.Username) {
		return fmt.Errorf("%w: not registered", ErrBadRequest)
	}
	if !exam.CanUnregister(s.now()) {
		return fmt.Errorf("%w: unregistration closed", ErrForbidden)
	}

	ok, err := s.exams.UnregisterStudent(ctx, examID, identity.Username)
	if err != nil {
		return fmt.Errorf("unregister student: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: not registered", ErrBadRequest)
	}

	s.log.Info().Str("username", identity.Username).Int64("exam_id", examID).Msg("Student unregistered")
	return nil
}

// Start creates the identity's exam session. Requires registration, the
// current time inside the start window, and no live session anywhere —
// the check-and-create is atomic in the session store.
func (s *ExamService) Start(ctx context.Context, identity model.Identity, examID int64) (*model.ExamSession, error) {
	exam, err := s.loadExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	if !exam.HasStudent(identity.Username) {
		return nil, fmt.Errorf("%w: not registered for exam", ErrForbidden)
	}
	if exam.DurationMinutes < model.MinExamDurationMinutes || exam.DurationMinutes > model.MaxExamDurationMinutes {
		return nil, fmt.Errorf("%w: exam duration %d out of bounds", ErrBadRequest, exam.DurationMinutes)
	}
	now := s.now()
	if !exam.Startable(now) {
		return nil, fmt.Errorf("%w: outside exam start window", ErrForbidden)
	}

	taskCount := len(exam.TaskIDs)
	session := model.ExamSession{
		Owner:      identity.Username,
		ExamID:     exam.ID,
		Token:      store.NewTokenString(),
		StartTime:  now,
		ExpiryTime: now.Add(exam.Duration()),
		TaskIDs:    append([]int64(nil), exam.TaskIDs...),
		Solutions:  make([]string, taskCount),
		Successes:  make([]bool, taskCount),
	}

	if err := s.sessions.Create(session); err != nil {
		if errors.Is(err, store.ErrSessionExists) {
			return nil, fmt.Errorf("%w: exam already in progress", ErrConflict)
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info().
		Str("username", identity.Username).
		Int64("exam_id", exam.ID).
		Time("expiry", session.ExpiryTime).
		Msg("Exam session started")

	return &session, nil
}

// SelectTask moves the active-task cursor and returns that task with the
// code previously saved for its slot. Students may freely revisit
// earlier tasks.
func (s *ExamService) SelectTask(ctx context.Context, identity model.Identity, index int) (*ExamTaskView, error) {
	session, ok := s.sessions.Get(identity.Username)
	if !ok {
		return nil, fmt.Errorf("%w: no exam in progress", ErrNotFound)
	}
	if index < 0 || index >= len(session.TaskIDs) {
		return nil, fmt.Errorf("%w: task index %d out of range", ErrBadRequest, index)
	}
	if !s.sessions.SetActiveTask(identity.Username, index) {
		return nil, fmt.Errorf("%w: no exam in progress", ErrNotFound)
	}

	return s.taskView(ctx, session, index)
}

// ActiveTask returns the task under the current cursor without moving it.
func (s *ExamService) ActiveTask(ctx context.Context, identity model.Identity) (*ExamTaskView, error) {
	session, ok := s.sessions.Get(identity.Username)
	if !ok {
		return nil, fmt.Errorf("%w: no exam in progress", ErrNotFound)
	}
	return s.taskView(ctx, session, session.ActiveTaskIndex)
}

// StoreProgress writes code into the active task's slot.
func (s *ExamService) StoreProgress(identity model.Identity, code string) error {
	if !s.sessions.StoreProgress(identity.Username, code) {
		return fmt.Errorf("%w: no exam in progress", ErrNotFound)
	}
	return nil
}

// Submit grades the active task. The slot index is captured before the
// grading round trip so a concurrent task switch cannot misfile the
// result; an upstream failure leaves solutions and successes untouched.
func (s *ExamService) Submit(ctx context.Context, identity model.Identity, code string) (*SubmitView, error) {
	session, ok := s.sessions.Get(identity.Username)
	if !ok {
		return nil, fmt.Errorf("%w: no exam in progress", ErrNotFound)
	}
	index := session.ActiveTaskIndex

	task, err := s.loadTaskByID(ctx, session.TaskIDs[index])
	if err != nil {
		return nil, err
	}

	resp, err := runGrading(ctx, s.grader, task, code)
	if err != nil {
		return nil, err
	}

	success := resp.AllPassed()
	if !s.sessions.RecordResult(identity.Username, index, code, success) {
		// Session finished or was swept while grading was in flight.
		return nil, fmt.Errorf("%w: exam session ended during grading", ErrNotFound)
	}

	s.log.Info().
		Str("username", identity.Username).
		Int64("exam_id", session.ExamID).
		Int("task_index", index).
		Bool("success", success).
		Msg("Exam submission graded")

	return &SubmitView{Results: resp.Results, Success: success}, nil
}

// Finish converts the session into an ExamResult and destroys it. It
// succeeds even past the session's expiry: finalization must not punish
// a student who finished just in time. A second finish reports NotFound.
func (s *ExamService) Finish(ctx context.Context, identity model.Identity) (*model.ExamResult, error) {
	session, ok := s.sessions.Take(identity.Username)
	if !ok {
		return nil, fmt.Errorf("%w: no exam in progress", ErrNotFound)
	}

	result := &model.ExamResult{
		ExamID:          session.ExamID,
		StudentUsername: session.Owner,
		Solutions:       append([]string(nil), session.Solutions...),
		Successes:       append([]bool(nil), session.Successes...),
	}

	if err := s.results.Append(ctx, result); err != nil {
		// Put the session back so the student can retry finishing.
		if createErr := s.sessions.Create(session); createErr != nil {
			s.log.Error().Err(createErr).Str("username", session.Owner).Msg("Could not restore session after failed archive")
		}
		return nil, fmt.Errorf("archive exam result: %w", err)
	}

	s.log.Info().
		Str("username", session.Owner).
		Int64("exam_id", session.ExamID).
		Int64("result_id", result.ID).
		Msg("Exam finished and archived")

	return result, nil
}

// Details returns the session summary, or NotFound without a session.
func (s *ExamService) Details(identity model.Identity) (*model.ExamDetails, error) {
	session, ok := s.sessions.Get(identity.Username)
	if !ok {
		return nil, fmt.Errorf("%w: no exam in progress", ErrNotFound)
	}
	return &model.ExamDetails{
		TaskCount:       len(session.TaskIDs),
		ActiveTaskIndex: session.ActiveTaskIndex,
		Successes:       append([]bool(nil), session.Successes...),
		FinishTime:      session.ExpiryTime,
	}, nil
}

// InProgress reports whether the identity has a live session.
func (s *ExamService) InProgress(identity model.Identity) bool {
	_, ok := s.sessions.Get(identity.Username)
	return ok
}

func (s *ExamService) taskView(ctx context.Context, session model.ExamSession, index int) (*ExamTaskView, error) {
	task, err := s.loadTaskByID(ctx, session.TaskIDs[index])
	if err != nil {
		return nil, err
	}
	return &ExamTaskView{
		Index:          index,
		TaskCount:      len(session.TaskIDs),
		Description:    task.Description,
		TestData:       task.TestData,
		ExpectedOutput: task.ExpectedOutput,
		SavedCode:      session.Solutions[index],
	}, nil
}

func (s *ExamService) loadExam(ctx context.Context, id int64) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: exam %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get exam %d: %w", id, err)
	}
	return exam, nil
}

func (s *ExamService) loadTaskByID(ctx context.Context, id int64) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return task, nil
}
