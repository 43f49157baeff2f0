package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlbertPrograms/nodecs-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ResultService reads the result archive and scores it against the
// owning exams' point values.
type ResultService struct {
	results ResultRepo
	exams   ExamRepo
	tasks   TaskRepo
	log     zerolog.Logger
	now     func() time.Time
}

// NewResultService creates a new ResultService.
func NewResultService(results ResultRepo, exams ExamRepo, tasks TaskRepo, log zerolog.Logger) *ResultService {
	return &ResultService{
		results: results,
		exams:   exams,
		tasks:   tasks,
		log:     log.With().Str("component", "result_service").Logger(),
		now:     time.Now,
	}
}

// ListForRequester returns scored results filtered by role: teachers and
// admins see every archived result, students only their own.
func (s *ResultService) ListForRequester(ctx context.Context, identity model.Identity) ([]model.ScoredResult, error) {
	var (
		results []model.ExamResult
		err     error
	)
	if identity.IsAdmin || identity.IsTeacher {
		results, err = s.results.ListAll(ctx)
	} else {
		results, err = s.results.ListByStudent(ctx, identity.Username)
	}
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	scored := make([]model.ScoredResult, 0, len(results))
	for i := range results {
		entry, err := s.score(ctx, results[i])
		if err != nil {
			return nil, err
		}
		scored = append(scored, entry)
	}
	return scored, nil
}

// score joins a result with its exam to compute total and scored points.
// A vanished exam degrades to an unscored entry rather than failing the
// whole listing.
func (s *ResultService) score(ctx context.Context, res model.ExamResult) (model.ScoredResult, error) {
	entry := model.ScoredResult{ExamResult: res}

	exam, err := s.exams.GetByID(ctx, res.ExamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.log.Warn().Int64("exam_id", res.ExamID).Int64("result_id", res.ID).Msg("Result references deleted exam")
			return entry, nil
		}
		return entry, fmt.Errorf("get exam %d: %w", res.ExamID, err)
	}
	entry.ExamName = exam.Name

	for i, taskID := range exam.TaskIDs {
		task, err := s.tasks.GetByID(ctx, taskID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				s.log.Warn().Int64("task_id", taskID).Int64("exam_id", exam.ID).Msg("Exam references deleted task")
				continue
			}
			return entry, fmt.Errorf("get task %d: %w", taskID, err)
		}

		entry.TotalPoints += task.PointValue
		if i < len(res.Successes) && res.Successes[i] {
			entry.ScoredPoints += task.PointValue
		}
	}
	return entry, nil
}
