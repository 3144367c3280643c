package model

import (
	"context"
	"fmt"
	"time"

	"github.com/limaJavier/classweek/pkg/sat"
	"go.uber.org/zap"
)

type satTimetabler struct {
	solver sat.SATSolver
	grid   Grid
	rules  Rules
	logger *zap.Logger
}

// NewSatTimetabler encodes the hard constraints as a CNF instance and hands it to an external
// solver. It yields a single feasible timetable, scored but not optimised.
func NewSatTimetabler(solver sat.SATSolver, grid Grid, rules Rules, logger *zap.Logger) Timetabler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &satTimetabler{
		solver: solver,
		grid:   grid,
		rules:  rules,
		logger: logger,
	}
}

func (timetabler *satTimetabler) Build(ctx context.Context, dataset Dataset) (SchedulingResult, error) {
	start := time.Now()

	//** Build problem and constraint model
	problem, err := BuildProblem(dataset, timetabler.grid)
	if err != nil {
		return SchedulingResult{}, err
	}
	model := NewModel(problem, timetabler.rules)

	//** Build SAT instance
	encoding := encodeModel(model)
	timetabler.logger.Info("sat instance built",
		zap.Int("sessions", len(problem.Sessions)),
		zap.Uint64("variables", encoding.instance.Variables),
		zap.Int("clauses", len(encoding.instance.Clauses)),
	)

	//** Solve SAT instance
	solution, err := timetabler.solver.Solve(ctx, encoding.instance)
	if err != nil {
		return SchedulingResult{}, err
	}

	outcome := SearchResult{
		Status: Infeasible,
		Report: Report{Violations: make([]Violation, 0)},
		Stats:  SearchStats{Stop: StopExhausted},
	}
	if solution != nil { // A nil solution stands for an unsatisfiable instance
		assignment := encoding.decode(solution)
		if !assignment.Complete() || !model.Feasible(assignment) {
			return SchedulingResult{}, fmt.Errorf("solver returned a model that does not satisfy the encoding")
		}
		outcome.Status = Solved
		outcome.Assignment = assignment
		outcome.Report = Score(model, assignment)
		outcome.Stats.Solutions = 1
		outcome.Stats.Stop = StopSolutionLimit
	}
	outcome.Stats.Elapsed = time.Since(start)

	timetabler.logger.Info("sat solving finished",
		zap.Stringer("status", outcome.Status),
		zap.Int("penalty", outcome.Report.Penalty),
		zap.Duration("elapsed", outcome.Stats.Elapsed),
	)

	return newSchedulingResult(problem, outcome), nil
}

func (timetabler *satTimetabler) Verify(result SchedulingResult, dataset Dataset) bool {
	return verify(result, dataset, timetabler.grid, timetabler.rules)
}
