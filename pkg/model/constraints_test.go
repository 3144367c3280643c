package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoCoursesDataset holds a class-group T1 taking A and B (two sessions each) from different teachers
func twoCoursesDataset() Dataset {
	dataset := NewDataset()
	dataset.AddClassGroup("T1", "A", "B")
	dataset.AddTeacher("P1", "A")
	dataset.AddTeacher("P2", "B")
	return dataset
}

func newTestModel(t *testing.T, dataset Dataset, rules Rules) *Model {
	t.Helper()
	problem, err := BuildProblem(dataset, DefaultGrid())
	require.NoError(t, err)
	return NewModel(problem, rules)
}

func constraintsByRule(model *Model, rule string) []Constraint {
	constraints := make([]Constraint, 0)
	for _, constraint := range append(model.Hard(), model.Soft()...) {
		if constraint.Rule() == rule {
			constraints = append(constraints, constraint)
		}
	}
	return constraints
}

func TestNewModelRegistry(t *testing.T) {
	//** Act
	model := newTestModel(t, loadDataset(t, "school.txt"), DefaultRules())

	//** Assert
	assert.Len(t, constraintsByRule(model, RuleClassGroupOverlap), 3)
	assert.Len(t, constraintsByRule(model, RuleTeacherOverlap), 3)
	assert.Len(t, constraintsByRule(model, RuleTeacherAvailability), 13) // Sessions of Ana and Carla
	assert.Len(t, constraintsByRule(model, RuleMaxSessionsPerDay), 3)
	assert.Len(t, constraintsByRule(model, RuleDistinctDays), 8) // Courses with two sessions
	assert.Len(t, constraintsByRule(model, RuleMaxDaysUsed), 3)
	assert.Len(t, constraintsByRule(model, RuleContiguity), 3)

	for _, constraint := range model.Hard() {
		assert.True(t, constraint.Hard())
	}
	for _, constraint := range model.Soft() {
		assert.False(t, constraint.Hard())
		assert.Equal(t, GroupPredicate, constraint.Kind())
	}
	for session := range model.Problem().Sessions {
		for _, constraint := range model.ConstraintsOf(session) {
			assert.Contains(t, constraint.Scope(), session)
		}
	}
}

func TestAllDifferent(t *testing.T) {
	//** Arrange
	model := newTestModel(t, twoCoursesDataset(), DefaultRules())
	constraint := constraintsByRule(model, RuleClassGroupOverlap)[0]
	store := newDomainStore(model.Problem())

	//** Act & Assert
	assert.Equal(t, AllDifferent, constraint.Kind())
	assert.True(t, constraint.Evaluate(Assignment{1, 2, 0, 0}))
	assert.False(t, constraint.Evaluate(Assignment{1, 1, 0, 0}))
	assert.Equal(t, 3, constraint.Penalty(Assignment{1, 1, 1, 0})) // Three colliding pairs
	assert.True(t, constraint.Check(Assignment{1, 2, 0, 0}, 1, store))
	assert.False(t, constraint.Check(Assignment{1, 1, 0, 0}, 1, store))
	assert.Equal(t, "class-group T1 attends simultaneous sessions at timeslots [1]", constraint.Describe(Assignment{1, 1, 0, 0}))
}

func TestAllDifferentMatching(t *testing.T) {
	//** Arrange
	model := newTestModel(t, twoCoursesDataset(), DefaultRules())
	constraint := constraintsByRule(model, RuleClassGroupOverlap)[0]
	store := newDomainStore(model.Problem())

	// Sessions 2 and 3 can only be held at slots 7 and 8
	for session := 2; session <= 3; session++ {
		for slot := uint64(1); slot <= 20; slot++ {
			if slot != 7 && slot != 8 {
				store.Remove(session, slot)
			}
		}
	}

	//** Act & Assert
	assert.True(t, constraint.Check(Assignment{1, 2, 0, 0}, 1, store))
	assert.False(t, constraint.Check(Assignment{1, 7, 0, 0}, 1, store)) // Two sessions left for slot 8

	constraint.(*allDifferent).matchingLimit = 0
	assert.True(t, constraint.Check(Assignment{1, 7, 0, 0}, 1, store))
}

func TestAllDifferentPropagate(t *testing.T) {
	//** Arrange
	model := newTestModel(t, twoCoursesDataset(), DefaultRules())
	constraint := constraintsByRule(model, RuleClassGroupOverlap)[0].(*allDifferent)
	store := newDomainStore(model.Problem())
	for slot := uint64(2); slot <= 20; slot++ {
		store.Remove(3, slot)
	}

	//** Act & Assert
	assert.True(t, constraint.Propagate(Assignment{5, 0, 0, 0}, 0, store))
	assert.False(t, store.Contains(1, 5))
	assert.False(t, store.Contains(2, 5))
	assert.True(t, store.Contains(0, 5))

	assert.False(t, constraint.Propagate(Assignment{5, 1, 0, 0}, 1, store)) // Wipes out session 3
}

func TestTeacherAvailability(t *testing.T) {
	//** Arrange
	model := newTestModel(t, scenarioDataset(), DefaultRules())
	constraint := constraintsByRule(model, RuleTeacherAvailability)[0]

	//** Act & Assert
	assert.Equal(t, Unary, constraint.Kind())
	assert.True(t, constraint.Evaluate(Assignment{0, 0, 0}))
	assert.True(t, constraint.Evaluate(Assignment{5, 0, 0}))
	assert.False(t, constraint.Evaluate(Assignment{4, 0, 0}))
	assert.False(t, constraint.Check(Assignment{4, 0, 0}, 0, nil))
	assert.Equal(t, 1, constraint.Penalty(Assignment{4, 0, 0}))
}

func TestMaxPerDay(t *testing.T) {
	//** Arrange
	rules := DefaultRules()
	rules.MaxSessionsPerDay = 2
	model := newTestModel(t, twoCoursesDataset(), rules)
	constraint := constraintsByRule(model, RuleMaxSessionsPerDay)[0]
	store := newDomainStore(model.Problem())

	//** Act & Assert
	assert.Equal(t, GroupCount, constraint.Kind())
	assert.True(t, constraint.Evaluate(Assignment{1, 2, 5, 0}))
	assert.False(t, constraint.Evaluate(Assignment{1, 2, 3, 0}))
	assert.Equal(t, 1, constraint.Penalty(Assignment{1, 2, 3, 0}))
	assert.False(t, constraint.Check(Assignment{1, 2, 3, 0}, 2, store))
	assert.True(t, constraint.Check(Assignment{1, 2, 5, 0}, 2, store))

	// Day 0 saturated: its slots leave the unassigned domains
	assert.True(t, constraint.(*maxPerDay).Propagate(Assignment{1, 2, 0, 0}, 1, store))
	for slot := uint64(1); slot <= 4; slot++ {
		assert.False(t, store.Contains(2, slot))
		assert.False(t, store.Contains(3, slot))
	}
	assert.True(t, store.Contains(2, 5))
}

func TestMaxPerDayCapacity(t *testing.T) {
	//** Arrange
	rules := DefaultRules()
	rules.MaxSessionsPerDay = 1
	grid := Grid{Days: 2, BlocksPerDay: 4}
	problem, err := BuildProblem(twoCoursesDataset(), grid)
	require.NoError(t, err)
	model := NewModel(problem, rules)
	constraint := constraintsByRule(model, RuleMaxSessionsPerDay)[0]

	//** Act & Assert
	// Four sessions, one per day over two days
	assert.False(t, constraint.Check(Assignment{1, 0, 0, 0}, 0, newDomainStore(problem)))
}

func TestSoftPredicates(t *testing.T) {
	//** Arrange
	model := newTestModel(t, twoCoursesDataset(), DefaultRules())
	distinct := constraintsByRule(model, RuleDistinctDays)[0]
	contiguity := constraintsByRule(model, RuleContiguity)[0]
	maxDays := constraintsByRule(model, RuleMaxDaysUsed)[0]

	//** Act & Assert
	// Distinct days: the two sessions of A
	assert.Equal(t, 0, distinct.Penalty(Assignment{1, 5, 0, 0}))
	assert.Equal(t, 1, distinct.Penalty(Assignment{1, 2, 0, 0}))
	assert.Equal(t, 1, distinct.LowerBound(Assignment{1, 2, 0, 0}))
	assert.True(t, distinct.Check(Assignment{1, 2, 0, 0}, 1, nil))

	// Contiguity: 1 and 3 leave a gap on day 0; 5 is alone on day 1
	assert.Equal(t, 0, contiguity.Penalty(Assignment{1, 2, 5, 0}))
	assert.Equal(t, 1, contiguity.Penalty(Assignment{1, 3, 5, 0}))
	assert.Equal(t, 2, contiguity.Penalty(Assignment{1, 3, 5, 8}))
	assert.Equal(t, 0, contiguity.LowerBound(Assignment{1, 3, 5, 8}))

	// Max days used: four days out of at most four
	assert.Equal(t, 0, maxDays.Penalty(Assignment{1, 5, 9, 13}))
	assert.Equal(t, 0, maxDays.Penalty(Assignment{1, 5, 9, 0}))
	assert.Contains(t, maxDays.Describe(Assignment{1, 5, 9, 13}), "4 days")
}

func TestMaxDaysUsedExcess(t *testing.T) {
	//** Arrange
	rules := DefaultRules()
	rules.MaxDaysUsed = 2
	rules.MaxDaysWeight = 3
	model := newTestModel(t, twoCoursesDataset(), rules)
	constraint := constraintsByRule(model, RuleMaxDaysUsed)[0]

	//** Act & Assert
	assert.Equal(t, 6, constraint.Penalty(Assignment{1, 5, 9, 13})) // Two excess days
	assert.Equal(t, 3, constraint.LowerBound(Assignment{1, 5, 9, 0}))
	assert.Equal(t, 3, model.LowerBound(Assignment{1, 5, 9, 0}))
}

func TestModelFeasible(t *testing.T) {
	//** Arrange
	model := newTestModel(t, scenarioDataset(), DefaultRules())

	//** Act & Assert
	assert.True(t, model.Feasible(Assignment{5, 9, 6}))
	assert.True(t, model.Feasible(Assignment{5, 0, 0}))
	assert.False(t, model.Feasible(Assignment{5, 5, 6})) // Overlap
	assert.False(t, model.Feasible(Assignment{1, 9, 6})) // Unavailable teacher
}
