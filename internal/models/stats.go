package models

import "math"

// TaskStats is a derived aggregate, always recomputed from the caller's
// tasks and never stored.
type TaskStats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	Overdue        int `json:"overdue"`
	CompletionRate int `json:"completionRate"`
}

// NewTaskStats derives the completion rate from the counts. The rate is 0
// when there are no tasks.
func NewTaskStats(total, completed, pending, overdue int) TaskStats {
	rate := 0
	if total > 0 {
		rate = int(math.Round(float64(completed) / float64(total) * 100))
	}
	return TaskStats{
		Total:          total,
		Completed:      completed,
		Pending:        pending,
		Overdue:        overdue,
		CompletionRate: rate,
	}
}
