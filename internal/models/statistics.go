package models

import "math"

// Statistics is the assignment aggregate served by the statistics endpoint.
type Statistics struct {
	TotalAssignments     int64   `json:"total_assignments"`
	CompletedAssignments int64   `json:"completed_assignments"`
	PendingAssignments   int64   `json:"pending_assignments"`
	OverdueAssignments   int64   `json:"overdue_assignments"`
	CompletionRate       float64 `json:"completion_rate"`
}

// NewStatistics builds the aggregate and derives the completion rate as a
// percentage rounded to two decimals.
func NewStatistics(total, completed, pending, overdue int64) Statistics {
	var rate float64
	if total > 0 {
		rate = math.Round(float64(completed)/float64(total)*100*100) / 100
	}
	return Statistics{
		TotalAssignments:     total,
		CompletedAssignments: completed,
		PendingAssignments:   pending,
		OverdueAssignments:   overdue,
		CompletionRate:       rate,
	}
}
