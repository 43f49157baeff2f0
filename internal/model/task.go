package model

// TaskMode governs task selection and whether grading affects a persisted
// outcome.
type TaskMode string

const (
	ModePractice TaskMode = "practice"
	ModeExam     TaskMode = "exam"
	ModeTesting  TaskMode = "testing"
)

// Valid reports whether the mode is one of the known task modes.
func (m TaskMode) Valid() bool {
	switch m {
	case ModePractice, ModeExam, ModeTesting:
		return true
	}
	return false
}

// Task is a graded exercise. Visible test data and expected output are
// shown to the student; the hidden pairs never leave the server.
type Task struct {
	ID                   int64    `json:"id"`
	Description          string   `json:"description"`
	TestData             []string `json:"test_data,omitempty"`
	ExpectedOutput       []string `json:"expected_output"`
	HiddenTestData       []string `json:"-"`
	HiddenExpectedOutput []string `json:"-"`
	PointValue           int      `json:"point_value"`
	Practicable          bool     `json:"practicable"`
}

// GetTaskRequest is the payload for mode-aware task retrieval.
// TaskID is only honored in testing mode.
type GetTaskRequest struct {
	Mode   string `json:"mode" binding:"required"`
	TaskID *int64 `json:"task_id" binding:"omitempty,min=0"`
}

// TokenCodeRequest carries a task token plus editor content.
type TokenCodeRequest struct {
	Token string `json:"token" binding:"required"`
	Code  string `json:"code"`
}
