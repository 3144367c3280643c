package model

import (
	"context"
	"errors"
	"maps"
	"os/exec"
	"testing"

	"github.com/google/uuid"
	"github.com/limaJavier/classweek/pkg/sat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSolver struct {
	solution sat.SATSolution
	err      error
	instance sat.SAT
}

func (solver *fakeSolver) Solve(_ context.Context, instance sat.SAT) (sat.SATSolution, error) {
	solver.instance = instance
	return solver.solution, solver.err
}

func TestBacktrackingTimetabler(t *testing.T) {
	timetabler := NewBacktrackingTimetabler(DefaultGrid(), DefaultRules(), newTestOptions(), nil)

	t.Run("Satisfiable instances", func(t *testing.T) {
		satisfiableExecution(t, timetabler)
	})
}

func TestParallelBacktrackingTimetabler(t *testing.T) {
	options := newTestOptions()
	options.Workers = 3
	timetabler := NewBacktrackingTimetabler(DefaultGrid(), DefaultRules(), options, nil)

	t.Run("Satisfiable instances", func(t *testing.T) {
		satisfiableExecution(t, timetabler)
	})
}

func TestKissatBasedSatTimetabler(t *testing.T) {
	if _, err := exec.LookPath("kissat"); err != nil {
		t.Skip("kissat is not installed")
	}
	timetabler := NewSatTimetabler(sat.NewKissatSolver(""), DefaultGrid(), DefaultRules(), nil)

	t.Run("Satisfiable instances", func(t *testing.T) {
		satisfiableExecution(t, timetabler)
	})
}

func satisfiableExecution(t *testing.T, timetabler Timetabler) {
	for _, file := range []string{"school.txt", "school.json"} {
		//** Arrange
		dataset := loadDataset(t, file)

		//** Act
		result, err := timetabler.Build(context.Background(), dataset)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, Solved, result.Status)
		assert.NotEqual(t, uuid.Nil, result.Id)
		assert.Len(t, result.Assignment, 18)
		assert.True(t, timetabler.Verify(result, dataset))
	}
}

func TestSatTimetablerWithFakeSolver(t *testing.T) {
	//** Arrange
	dataset := loadDataset(t, "school.txt")
	model := newTestModel(t, dataset, DefaultRules())
	outcome := Search(context.Background(), model, newTestOptions(), nil)
	require.Equal(t, Solved, outcome.Status)
	encoding := encodeModel(model)
	solver := &fakeSolver{solution: encoding.assignmentLiterals(outcome.Assignment)}
	timetabler := NewSatTimetabler(solver, DefaultGrid(), DefaultRules(), nil)

	//** Act
	result, err := timetabler.Build(context.Background(), dataset)

	//** Assert
	require.NoError(t, err)
	assert.True(t, solver.instance.Satisfies(solver.solution))
	assert.Equal(t, Solved, result.Status)
	assert.Equal(t, model.Problem().Mapping(outcome.Assignment), result.Assignment)
	assert.Equal(t, outcome.Report.Penalty, result.Penalty)
	assert.True(t, timetabler.Verify(result, dataset))
}

func TestSatTimetablerUnsatisfiable(t *testing.T) {
	//** Arrange
	timetabler := NewSatTimetabler(&fakeSolver{}, DefaultGrid(), DefaultRules(), nil)

	//** Act
	result, err := timetabler.Build(context.Background(), scenarioDataset())

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, Infeasible, result.Status)
	assert.Empty(t, result.Assignment)
	assert.False(t, timetabler.Verify(result, scenarioDataset()))
}

func TestSatTimetablerSolverFailure(t *testing.T) {
	//** Arrange
	failure := errors.New("solver crashed")
	timetabler := NewSatTimetabler(&fakeSolver{err: failure}, DefaultGrid(), DefaultRules(), nil)

	//** Act
	_, err := timetabler.Build(context.Background(), scenarioDataset())

	//** Assert
	assert.ErrorIs(t, err, failure)
}

func TestSatTimetablerInvalidSolution(t *testing.T) {
	//** Arrange
	// Every session of the scenario at slot 5
	solver := &fakeSolver{solution: sat.SATSolution{5, 25, 45}}
	timetabler := NewSatTimetabler(solver, DefaultGrid(), DefaultRules(), nil)

	//** Act
	_, err := timetabler.Build(context.Background(), scenarioDataset())

	//** Assert
	assert.Error(t, err)
}

func TestTimetablerConfigurationError(t *testing.T) {
	//** Arrange
	dataset := scenarioDataset()
	dataset.AddClassGroup("T2", "C")
	timetabler := NewBacktrackingTimetabler(DefaultGrid(), DefaultRules(), newTestOptions(), nil)

	//** Act
	_, err := timetabler.Build(context.Background(), dataset)

	//** Assert
	var configurationError *ConfigurationError
	assert.ErrorAs(t, err, &configurationError)
	assert.ErrorIs(t, err, ErrNoTeacher)
}

func TestVerifyRejectsTamperedResults(t *testing.T) {
	//** Arrange
	dataset := loadDataset(t, "school.txt")
	timetabler := NewBacktrackingTimetabler(DefaultGrid(), DefaultRules(), newTestOptions(), nil)
	result, err := timetabler.Build(context.Background(), dataset)
	require.NoError(t, err)
	require.True(t, timetabler.Verify(result, dataset))

	mat1 := Session{ClassGroup: "T1", Course: "MAT", Index: 1}
	por1 := Session{ClassGroup: "T1", Course: "POR", Index: 1}
	tamper := func(change func(result *SchedulingResult)) SchedulingResult {
		tampered := result
		tampered.Assignment = maps.Clone(result.Assignment)
		change(&tampered)
		return tampered
	}

	tests := []struct {
		name   string
		result SchedulingResult
	}{
		{name: "class-group overlap", result: tamper(func(result *SchedulingResult) {
			result.Assignment[por1] = result.Assignment[mat1]
		})},
		{name: "unavailable teacher", result: tamper(func(result *SchedulingResult) {
			result.Assignment[mat1] = 1
		})},
		{name: "outside of the grid", result: tamper(func(result *SchedulingResult) {
			result.Assignment[mat1] = 21
		})},
		{name: "missing session", result: tamper(func(result *SchedulingResult) {
			delete(result.Assignment, mat1)
		})},
		{name: "unknown session", result: tamper(func(result *SchedulingResult) {
			result.Assignment[Session{ClassGroup: "T9", Course: "MAT", Index: 1}] = 1
		})},
		{name: "wrong penalty", result: tamper(func(result *SchedulingResult) {
			result.Penalty++
		})},
		{name: "infeasible status", result: tamper(func(result *SchedulingResult) {
			result.Status = Infeasible
		})},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			//** Act & Assert
			assert.False(t, timetabler.Verify(test.result, dataset))
		})
	}
}

func TestVerifyMaxSessionsPerDay(t *testing.T) {
	//** Arrange
	dataset := twoCoursesDataset()
	rules := DefaultRules()
	rules.MaxSessionsPerDay = 2
	timetabler := NewBacktrackingTimetabler(DefaultGrid(), rules, newTestOptions(), nil)
	result := SchedulingResult{
		Status: Solved,
		Assignment: map[Session]uint64{
			{ClassGroup: "T1", Course: "A", Index: 1}: 1,
			{ClassGroup: "T1", Course: "A", Index: 2}: 5,
			{ClassGroup: "T1", Course: "B", Index: 1}: 2,
			{ClassGroup: "T1", Course: "B", Index: 2}: 3,
		},
	}

	//** Act & Assert
	assert.False(t, timetabler.Verify(result, dataset))
	result.Assignment[Session{ClassGroup: "T1", Course: "B", Index: 2}] = 9
	assert.True(t, timetabler.Verify(result, dataset))
}
