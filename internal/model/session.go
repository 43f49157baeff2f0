package model

import "time"

// TaskToken is an ephemeral credential binding (owner, task, mode) plus
// cached in-progress code. Lives in process memory only; lost on restart.
type TaskToken struct {
	Token     string    `json:"token"`
	Owner     string    `json:"-"`
	TaskID    int64     `json:"task_id"`
	Mode      TaskMode  `json:"mode"`
	SavedCode string    `json:"saved_code"`
	ExpiresAt time.Time `json:"-"`
}

// ExamSession is the live, time-bounded state of a student actively
// taking one exam. At most one per identity, globally.
//
// Invariant: len(Solutions) == len(Successes) == len(TaskIDs).
type ExamSession struct {
	Owner           string    `json:"-"`
	ExamID          int64     `json:"exam_id"`
	Token           string    `json:"token"`
	StartTime       time.Time `json:"start_time"`
	ExpiryTime      time.Time `json:"expiry_time"`
	ActiveTaskIndex int       `json:"active_task_index"`
	TaskIDs         []int64   `json:"-"`
	Solutions       []string  `json:"-"`
	Successes       []bool    `json:"-"`
}

// ExamDetails is the session summary returned to the client.
type ExamDetails struct {
	TaskCount       int       `json:"task_count"`
	ActiveTaskIndex int       `json:"active_task_index"`
	Successes       []bool    `json:"successes"`
	FinishTime      time.Time `json:"finish_time"`
}
