package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreIdempotence(t *testing.T) {
	//** Arrange
	model := newTestModel(t, loadDataset(t, "school.txt"), DefaultRules())
	result := Search(context.Background(), model, newTestOptions(), nil)
	require.Equal(t, Solved, result.Status)

	//** Act
	report1 := Score(model, result.Assignment)
	report2 := Score(model, result.Assignment)

	//** Assert
	assert.Equal(t, report1, report2)
	assert.Equal(t, result.Report, report1)
	assert.Empty(t, report1.HardViolations)
}

func TestScoreViolations(t *testing.T) {
	//** Arrange
	model := newTestModel(t, twoCoursesDataset(), DefaultRules())

	//** Act
	// A twice on day 0 leaving a gap; B on days 1 and 2
	report := Score(model, Assignment{1, 3, 5, 9})

	//** Assert
	assert.Equal(t, 2, report.Penalty)
	require.Len(t, report.Violations, 2)
	assert.Equal(t, RuleDistinctDays, report.Violations[0].Rule)
	assert.Equal(t, "A", report.Violations[0].Course)
	assert.Equal(t, "T1", report.Violations[0].ClassGroup)
	assert.Equal(t, RuleContiguity, report.Violations[1].Rule)
	assert.False(t, report.Violations[1].Hard)
	assert.Empty(t, report.HardViolations)
}

func TestScoreHardViolations(t *testing.T) {
	//** Arrange
	model := newTestModel(t, twoCoursesDataset(), DefaultRules())

	//** Act
	report := Score(model, Assignment{1, 1, 5, 6})

	//** Assert
	require.Len(t, report.HardViolations, 2) // Class-group and teacher P1 overlaps
	assert.Equal(t, RuleClassGroupOverlap, report.HardViolations[0].Rule)
	assert.Equal(t, RuleTeacherOverlap, report.HardViolations[1].Rule)
	assert.Equal(t, "P1", report.HardViolations[1].Teacher)
	assert.True(t, report.HardViolations[0].Hard)
}

func TestScorePartialAssignment(t *testing.T) {
	//** Arrange
	model := newTestModel(t, twoCoursesDataset(), DefaultRules())

	//** Act
	report := Score(model, Assignment{1, 0, 0, 0})

	//** Assert
	assert.Equal(t, 0, report.Penalty)
	assert.Empty(t, report.Violations)
}
