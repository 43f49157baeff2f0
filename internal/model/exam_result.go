package model

// ExamResult is the immutable, persisted outcome of one completed exam
// attempt. Written exactly once per attempt.
type ExamResult struct {
	ID              int64    `json:"id"`
	ExamID          int64    `json:"exam_id"`
	StudentUsername string   `json:"student_username"`
	Solutions       []string `json:"solutions"`
	Successes       []bool   `json:"successes"`
}

// ScoredResult is an ExamResult enriched with the owning exam's name and
// point values.
type ScoredResult struct {
	ExamResult
	ExamName     string `json:"exam_name"`
	TotalPoints  int    `json:"total_points"`
	ScoredPoints int    `json:"scored_points"`
}
