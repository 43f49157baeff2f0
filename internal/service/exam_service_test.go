package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AlbertPrograms/nodecs-backend/internal/executor"
	"github.com/AlbertPrograms/nodecs-backend/internal/model"
	"github.com/AlbertPrograms/nodecs-backend/internal/store"
	"github.com/rs/zerolog"
)

type examFixture struct {
	svc      *ExamService
	sessions *store.SessionStore
	exams    *fakeExamRepo
	results  *fakeResultRepo
	grader   *fakeGrader
	now      time.Time
}

// newExamFixture builds an exam starting now with two tasks (point
// values 1 and 3) and the student already on the roster.
func newExamFixture(t *testing.T) *examFixture {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)

	exams := &fakeExamRepo{exams: map[int64]*model.Exam{
		7: {
			ID:              7,
			Name:            "Midterm",
			StartMin:        now.Add(-10 * time.Minute),
			StartMax:        now.Add(30 * time.Minute),
			DurationMinutes: 30,
			Students:        []string{student.Username},
			TaskIDs:         []int64{1, 2},
		},
	}}
	results := &fakeResultRepo{}
	grader := &fakeGrader{resp: passingResponse()}
	sessions := store.NewSessionStore()

	svc := NewExamService(sessions, exams, &fakeTaskRepo{tasks: sampleTasks()}, results, grader, zerolog.Nop())
	f := &examFixture{svc: svc, sessions: sessions, exams: exams, results: results, grader: grader, now: now}
	svc.now = func() time.Time { return f.now }
	return f
}

func (f *examFixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func TestStartCreatesZeroFilledSession(t *testing.T) {
	f := newExamFixture(t)

	sess, err := f.svc.Start(context.Background(), student, 7)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if sess.ActiveTaskIndex != 0 {
		t.Errorf("ActiveTaskIndex = %d, want 0", sess.ActiveTaskIndex)
	}
	if len(sess.Solutions) != 2 || len(sess.Successes) != 2 {
		t.Errorf("slot lengths = %d/%d, want 2/2", len(sess.Solutions), len(sess.Successes))
	}
	if want := f.now.Add(30 * time.Minute); !sess.ExpiryTime.Equal(want) {
		t.Errorf("ExpiryTime = %v, want %v", sess.ExpiryTime, want)
	}
}

func TestStartRequiresRegistration(t *testing.T) {
	f := newExamFixture(t)
	outsider := model.Identity{Username: "outsider"}

	if _, err := f.svc.Start(context.Background(), outsider, 7); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestStartOutsideWindowForbidden(t *testing.T) {
	f := newExamFixture(t)
	f.advance(31 * time.Minute) // Past StartMax.

	if _, err := f.svc.Start(context.Background(), student, 7); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestStartUnknownExamNotFound(t *testing.T) {
	f := newExamFixture(t)
	if _, err := f.svc.Start(context.Background(), student, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStartWithActiveSessionConflicts(t *testing.T) {
	f := newExamFixture(t)
	ctx := context.Background()

	first, err := f.svc.Start(ctx, student, 7)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.svc.StoreProgress(student, "in progress"); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Start(ctx, student, 7); !errors.Is(err, ErrConflict) {
		t.Fatalf("second Start err = %v, want ErrConflict", err)
	}

	// The live session's fields must be unchanged.
	got, ok := f.sessions.Get(student.Username)
	if !ok {
		t.Fatal("session vanished")
	}
	if got.Token != first.Token || got.Solutions[0] != "in progress" {
		t.Errorf("existing session mutated: %+v", got)
	}
}

func TestRegistrationWindows(t *testing.T) {
	cases := []struct {
		name          string
		untilStartMin time.Duration
		registerErr   error
		unregisterOK  bool
	}{
		{"well before start", 48 * time.Hour, nil, true},
		{"inside 36h, outside 24h", 30 * time.Hour, nil, false},
		{"inside 24h", 12 * time.Hour, ErrForbidden, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newExamFixture(t)
			newcomer := model.Identity{Username: "newcomer"}
			f.exams.exams[7].StartMin = f.now.Add(tc.untilStartMin)
			ctx := context.Background()

			err := f.svc.Register(ctx, newcomer, 7)
			if !errors.Is(err, tc.registerErr) {
				t.Fatalf("Register err = %v, want %v", err, tc.registerErr)
			}

			if tc.registerErr != nil {
				// Roster must be unchanged on rejection.
				if f.exams.exams[7].HasStudent(newcomer.Username) {
					t.Error("rejected registration mutated the roster")
				}
				return
			}

			err = f.svc.Unregister(ctx, newcomer, 7)
			if tc.unregisterOK && err != nil {
				t.Errorf("Unregister err = %v, want nil", err)
			}
			if !tc.unregisterOK {
				if !errors.Is(err, ErrForbidden) {
					t.Errorf("Unregister err = %v, want ErrForbidden", err)
				}
				if !f.exams.exams[7].HasStudent(newcomer.Username) {
					t.Error("rejected unregistration mutated the roster")
				}
			}
		})
	}
}

func TestRegisterTwiceConflicts(t *testing.T) {
	f := newExamFixture(t)
	f.exams.exams[7].StartMin = f.now.Add(48 * time.Hour)

	if err := f.svc.Register(context.Background(), student, 7); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate Register err = %v, want ErrConflict", err)
	}
}

func TestUnregisterWhenNotRegistered(t *testing.T) {
	f := newExamFixture(t)
	f.exams.exams[7].StartMin = f.now.Add(72 * time.Hour)
	outsider := model.Identity{Username: "outsider"}

	if err := f.svc.Unregister(context.Background(), outsider, 7); !errors.Is(err, ErrBadRequest) {
		t.Errorf("err = %v, want ErrBadRequest", err)
	}
}

func TestSelectTaskBoundsAndRevisit(t *testing.T) {
	f := newExamFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, student, 7); err != nil {
		t.Fatal(err)
	}

	view, err := f.svc.SelectTask(ctx, student, 1)
	if err != nil {
		t.Fatalf("SelectTask(1): %v", err)
	}
	if view.Index != 1 || view.TaskCount != 2 {
		t.Errorf("view = %+v", view)
	}

	if err := f.svc.StoreProgress(student, "task two code"); err != nil {
		t.Fatal(err)
	}

	// Revisit task 0, then come back: saved code must survive.
	if _, err := f.svc.SelectTask(ctx, student, 0); err != nil {
		t.Fatal(err)
	}
	back, err := f.svc.SelectTask(ctx, student, 1)
	if err != nil {
		t.Fatal(err)
	}
	if back.SavedCode != "task two code" {
		t.Errorf("SavedCode = %q after revisit", back.SavedCode)
	}

	if _, err := f.svc.SelectTask(ctx, student, 2); !errors.Is(err, ErrBadRequest) {
		t.Errorf("out-of-range index err = %v, want ErrBadRequest", err)
	}
}

func TestSubmitRecordsSlot(t *testing.T) {
	f := newExamFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, student, 7); err != nil {
		t.Fatal(err)
	}

	out, err := f.svc.Submit(ctx, student, "print('Hello world!')")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !out.Success {
		t.Error("Success = false")
	}

	sess, _ := f.sessions.Get(student.Username)
	if !sess.Successes[0] || sess.Solutions[0] != "print('Hello world!')" {
		t.Errorf("slot 0 = (%q, %v)", sess.Solutions[0], sess.Successes[0])
	}
}

func TestSubmitHiddenFailureFailsSubmission(t *testing.T) {
	f := newExamFixture(t)
	// Visible case passes, hidden case exits 1.
	f.grader.resp = &executor.CompileAndRunResponse{
		Results: []executor.ExecutionResult{passingResult()},
		HiddenResults: []executor.ExecutionResult{
			{Code: 1, OutputMatchesExpectation: boolPtr(true)},
		},
	}
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, student, 7); err != nil {
		t.Fatal(err)
	}
	out, err := f.svc.Submit(ctx, student, "sneaky")
	if err != nil {
		t.Fatal(err)
	}
	if out.Success {
		t.Error("hidden failure must fail the submission")
	}

	sess, _ := f.sessions.Get(student.Username)
	if sess.Successes[0] {
		t.Error("Successes[0] = true despite hidden failure")
	}
}

func TestSubmitUpstreamFailurePreservesSession(t *testing.T) {
	f := newExamFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, student, 7); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.StoreProgress(student, "saved before outage"); err != nil {
		t.Fatal(err)
	}

	f.grader.err = executor.ErrUnavailable
	if _, err := f.svc.Submit(ctx, student, "lost attempt"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("Submit err = %v, want ErrUpstream", err)
	}

	sess, _ := f.sessions.Get(student.Username)
	if sess.Solutions[0] != "saved before outage" {
		t.Errorf("Solutions[0] = %q, upstream failure must not touch state", sess.Solutions[0])
	}
	if sess.Successes[0] {
		t.Error("Successes[0] mutated by upstream failure")
	}
}

func TestFinishArchivesExactlyOnce(t *testing.T) {
	f := newExamFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, student, 7); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Submit(ctx, student, "print('Hello world!')"); err != nil {
		t.Fatal(err)
	}

	res, err := f.svc.Finish(ctx, student)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(res.Solutions) != 2 || len(res.Successes) != 2 {
		t.Errorf("result lengths = %d/%d, want 2/2", len(res.Solutions), len(res.Successes))
	}
	if !res.Successes[0] || res.Successes[1] {
		t.Errorf("Successes = %v", res.Successes)
	}
	if len(f.results.results) != 1 {
		t.Fatalf("%d results archived, want 1", len(f.results.results))
	}

	if _, err := f.svc.Finish(ctx, student); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Finish err = %v, want ErrNotFound", err)
	}
	if len(f.results.results) != 1 {
		t.Errorf("second Finish archived another result")
	}
}

func TestFinishPastExpiryStillSucceeds(t *testing.T) {
	f := newExamFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, student, 7); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.StoreProgress(student, "last minute work"); err != nil {
		t.Fatal(err)
	}

	f.advance(31 * time.Minute) // One minute past the 30 minute duration.

	res, err := f.svc.Finish(ctx, student)
	if err != nil {
		t.Fatalf("Finish past expiry: %v", err)
	}
	if res.Solutions[0] != "last minute work" {
		t.Errorf("archived Solutions[0] = %q", res.Solutions[0])
	}
}

func TestFinishArchiveFailureRestoresSession(t *testing.T) {
	f := newExamFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, student, 7); err != nil {
		t.Fatal(err)
	}

	f.results.appendErr = errors.New("archive down")
	if _, err := f.svc.Finish(ctx, student); err == nil {
		t.Fatal("Finish succeeded despite archive failure")
	}

	// The session must be restored so the student can retry.
	if _, ok := f.sessions.Get(student.Username); !ok {
		t.Error("session lost after failed archive")
	}

	f.results.appendErr = nil
	if _, err := f.svc.Finish(ctx, student); err != nil {
		t.Errorf("retry Finish: %v", err)
	}
}

func TestDetailsAndInProgress(t *testing.T) {
	f := newExamFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Details(student); !errors.Is(err, ErrNotFound) {
		t.Errorf("Details without session err = %v, want ErrNotFound", err)
	}
	if f.svc.InProgress(student) {
		t.Error("InProgress = true without session")
	}

	sess, err := f.svc.Start(ctx, student, 7)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.SelectTask(ctx, student, 1); err != nil {
		t.Fatal(err)
	}

	details, err := f.svc.Details(student)
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if details.TaskCount != 2 || details.ActiveTaskIndex != 1 {
		t.Errorf("details = %+v", details)
	}
	if !details.FinishTime.Equal(sess.ExpiryTime) {
		t.Errorf("FinishTime = %v, want %v", details.FinishTime, sess.ExpiryTime)
	}
	if !f.svc.InProgress(student) {
		t.Error("InProgress = false with live session")
	}
}

func TestGetAvailableExamsAnnotatesAndFilters(t *testing.T) {
	f := newExamFixture(t)
	ctx := context.Background()

	// Exam 8 starts far in the future; both windows open.
	f.exams.exams[8] = &model.Exam{
		ID:              8,
		Name:            "Final",
		StartMin:        f.now.Add(72 * time.Hour),
		StartMax:        f.now.Add(73 * time.Hour),
		DurationMinutes: 60,
		TaskIDs:         []int64{1},
	}

	available, err := f.svc.GetAvailableExams(ctx, student)
	if err != nil {
		t.Fatal(err)
	}
	byID := make(map[int64]model.AvailableExam)
	for _, e := range available {
		byID[e.ID] = e
	}

	if e := byID[7]; !e.Registered || e.CanRegister || e.CanUnregister {
		t.Errorf("exam 7 annotations = %+v", e)
	}
	if e := byID[8]; e.Registered || !e.CanRegister || !e.CanUnregister {
		t.Errorf("exam 8 annotations = %+v", e)
	}

	// Completing exam 7 hides it from the listing.
	if _, err := f.svc.Start(ctx, student, 7); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Finish(ctx, student); err != nil {
		t.Fatal(err)
	}

	available, err = f.svc.GetAvailableExams(ctx, student)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range available {
		if e.ID == 7 {
			t.Error("completed exam still listed as available")
		}
	}
}
