package model

import "time"

// Exam duration bounds in minutes, enforced when exams are created or
// started.
const (
	MinExamDurationMinutes = 15
	MaxExamDurationMinutes = 150
)

// Registration gates relative to the earliest start time. Both tighten
// monotonically and never re-open once passed.
const (
	RegistrationCutoff   = 24 * time.Hour
	UnregistrationCutoff = 36 * time.Hour
)

// Exam is a scheduled, rostered set of tasks.
type Exam struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	StartMin        time.Time `json:"start_min"`
	StartMax        time.Time `json:"start_max"`
	DurationMinutes int       `json:"duration_minutes"`
	Students        []string  `json:"students,omitempty"`
	TaskIDs         []int64   `json:"task_ids,omitempty"`
}

// HasStudent reports whether the username is on the roster.
func (e *Exam) HasStudent(username string) bool {
	for _, s := range e.Students {
		if s == username {
			return true
		}
	}
	return false
}

// CanRegister reports whether registration is still open at now.
func (e *Exam) CanRegister(now time.Time) bool {
	return now.Before(e.StartMin.Add(-RegistrationCutoff))
}

// CanUnregister reports whether unregistration is still open at now.
func (e *Exam) CanUnregister(now time.Time) bool {
	return now.Before(e.StartMin.Add(-UnregistrationCutoff))
}

// Startable reports whether now lies within the exam's start window.
func (e *Exam) Startable(now time.Time) bool {
	return !now.Before(e.StartMin) && !now.After(e.StartMax)
}

// Duration returns the exam duration as a time.Duration.
func (e *Exam) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}

// AvailableExam is an exam annotated for the lobby listing.
type AvailableExam struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	StartMin        time.Time `json:"start_min"`
	StartMax        time.Time `json:"start_max"`
	DurationMinutes int       `json:"duration_minutes"`
	Registered      bool      `json:"registered"`
	CanRegister     bool      `json:"can_register"`
	CanUnregister   bool      `json:"can_unregister"`
}

// ExamIDRequest identifies an exam in lifecycle requests.
type ExamIDRequest struct {
	ID int64 `json:"id" binding:"min=0"`
}

// SelectExamTaskRequest switches the active task cursor.
type SelectExamTaskRequest struct {
	Index int `json:"index" binding:"min=0"`
}

// ExamCodeRequest carries editor content for the active exam task.
type ExamCodeRequest struct {
	Code string `json:"code"`
}
