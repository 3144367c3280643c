package model

import (
	"context"

	"github.com/google/uuid"
)

type Timetabler interface {
	// Builds the best timetable the strategy can find for the dataset. An infeasible dataset is
	// reported through the result's status; errors are reserved for configuration and solver failures.
	Build(ctx context.Context, dataset Dataset) (SchedulingResult, error)

	// Checks the result against every hard rule of the dataset
	Verify(result SchedulingResult, dataset Dataset) bool
}

type SchedulingResult struct {
	Id         uuid.UUID          `json:"id"`
	Status     Status             `json:"status"`
	Assignment map[Session]uint64 `json:"-"`
	Penalty    int                `json:"penalty"`
	Violations []Violation        `json:"violations"`
	Stats      SearchStats        `json:"stats"`
}

func newSchedulingResult(problem *Problem, outcome SearchResult) SchedulingResult {
	result := SchedulingResult{
		Id:         uuid.New(),
		Status:     outcome.Status,
		Assignment: make(map[Session]uint64),
		Penalty:    outcome.Report.Penalty,
		Violations: outcome.Report.Violations,
		Stats:      outcome.Stats,
	}
	if outcome.Status == Solved {
		result.Assignment = problem.Mapping(outcome.Assignment)
	}
	return result
}
