package model

import (
	"context"

	"go.uber.org/zap"
)

type backtrackingTimetabler struct {
	grid    Grid
	rules   Rules
	options Options
	logger  *zap.Logger
}

func NewBacktrackingTimetabler(grid Grid, rules Rules, options Options, logger *zap.Logger) Timetabler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &backtrackingTimetabler{
		grid:    grid,
		rules:   rules,
		options: options,
		logger:  logger,
	}
}

func (timetabler *backtrackingTimetabler) Build(ctx context.Context, dataset Dataset) (SchedulingResult, error) {
	//** Build problem and constraint model
	problem, err := BuildProblem(dataset, timetabler.grid)
	if err != nil {
		return SchedulingResult{}, err
	}
	model := NewModel(problem, timetabler.rules)

	timetabler.logger.Info("constraint model built",
		zap.Int("sessions", len(problem.Sessions)),
		zap.Int("hard", len(model.Hard())),
		zap.Int("soft", len(model.Soft())),
	)

	//** Search
	outcome := Search(ctx, model, timetabler.options, timetabler.logger)

	timetabler.logger.Info("search finished",
		zap.Stringer("status", outcome.Status),
		zap.Int("penalty", outcome.Report.Penalty),
		zap.Uint64("nodes", outcome.Stats.Nodes),
		zap.Uint64("solutions", outcome.Stats.Solutions),
		zap.String("stop", outcome.Stats.Stop),
		zap.Duration("elapsed", outcome.Stats.Elapsed),
	)

	return newSchedulingResult(problem, outcome), nil
}

func (timetabler *backtrackingTimetabler) Verify(result SchedulingResult, dataset Dataset) bool {
	return verify(result, dataset, timetabler.grid, timetabler.rules)
}
