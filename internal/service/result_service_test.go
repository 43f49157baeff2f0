package service

import (
	"context"
	"testing"
	"time"

	"github.com/AlbertPrograms/nodecs-backend/internal/model"
	"github.com/rs/zerolog"
)

func newResultService(results *fakeResultRepo, exams *fakeExamRepo) *ResultService {
	return NewResultService(results, exams, &fakeTaskRepo{tasks: sampleTasks()}, zerolog.Nop())
}

func archivedResults() (*fakeResultRepo, *fakeExamRepo) {
	exams := &fakeExamRepo{exams: map[int64]*model.Exam{
		7: {ID: 7, Name: "Midterm", StartMin: time.Now(), StartMax: time.Now(), DurationMinutes: 30, TaskIDs: []int64{1, 2}},
	}}
	results := &fakeResultRepo{results: []model.ExamResult{
		{ID: 1, ExamID: 7, StudentUsername: student.Username, Solutions: []string{"a", "b"}, Successes: []bool{true, false}},
		{ID: 2, ExamID: 7, StudentUsername: "other", Solutions: []string{"c", "d"}, Successes: []bool{true, true}},
	}}
	return results, exams
}

func TestListForRequesterRoleFiltering(t *testing.T) {
	results, exams := archivedResults()
	svc := newResultService(results, exams)
	ctx := context.Background()

	own, err := svc.ListForRequester(ctx, student)
	if err != nil {
		t.Fatalf("student listing: %v", err)
	}
	if len(own) != 1 || own[0].StudentUsername != student.Username {
		t.Errorf("student sees %d results, want only their own", len(own))
	}

	all, err := svc.ListForRequester(ctx, teacher)
	if err != nil {
		t.Fatalf("teacher listing: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("teacher sees %d results, want 2", len(all))
	}

	admin := model.Identity{Username: "admin1", IsAdmin: true}
	all, err = svc.ListForRequester(ctx, admin)
	if err != nil {
		t.Fatalf("admin listing: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin sees %d results, want 2", len(all))
	}
}

func TestScoringSumsPointValues(t *testing.T) {
	results, exams := archivedResults()
	svc := newResultService(results, exams)

	// Tasks 1 and 2 are worth 1 and 3 points. The student solved only
	// the first one.
	scored, err := svc.ListForRequester(context.Background(), student)
	if err != nil {
		t.Fatal(err)
	}
	if len(scored) != 1 {
		t.Fatalf("len = %d, want 1", len(scored))
	}

	got := scored[0]
	if got.ExamName != "Midterm" {
		t.Errorf("ExamName = %q", got.ExamName)
	}
	if got.TotalPoints != 4 {
		t.Errorf("TotalPoints = %d, want 4", got.TotalPoints)
	}
	if got.ScoredPoints != 1 {
		t.Errorf("ScoredPoints = %d, want 1", got.ScoredPoints)
	}
}

func TestScoringDegradesOnDeletedExam(t *testing.T) {
	results, _ := archivedResults()
	svc := newResultService(results, &fakeExamRepo{exams: map[int64]*model.Exam{}})

	scored, err := svc.ListForRequester(context.Background(), student)
	if err != nil {
		t.Fatalf("listing must survive a deleted exam: %v", err)
	}
	if len(scored) != 1 {
		t.Fatalf("len = %d, want 1", len(scored))
	}
	if scored[0].ExamName != "" || scored[0].TotalPoints != 0 {
		t.Errorf("deleted exam must yield an unscored entry, got %+v", scored[0])
	}
}
