package model

import (
	"slices"

	"github.com/samber/lo"
)

// Rules parametrizes the constraint model
type Rules struct {
	MaxSessionsPerDay  int
	MaxDaysUsed        int
	DistinctDaysWeight int
	MaxDaysWeight      int
	ContiguityWeight   int
	MatchingScopeLimit int // Largest all-different scope checked through bipartite matching (0 disables it)
}

func DefaultRules() Rules {
	return Rules{
		MaxSessionsPerDay:  3,
		MaxDaysUsed:        4,
		DistinctDaysWeight: 1,
		MaxDaysWeight:      1,
		ContiguityWeight:   1,
		MatchingScopeLimit: 24,
	}
}

// Model is the registry of hard and soft constraints of a problem. It is built once and shared
// read-only by every search over the problem.
type Model struct {
	problem   *Problem
	rules     Rules
	hard      []Constraint
	soft      []Constraint
	bySession [][]Constraint // Hard constraints whose scope contains the session
}

func NewModel(problem *Problem, rules Rules) *Model {
	model := &Model{
		problem:   problem,
		rules:     rules,
		hard:      make([]Constraint, 0),
		soft:      make([]Constraint, 0),
		bySession: make([][]Constraint, len(problem.Sessions)),
	}

	ids := lo.Range(len(problem.Sessions))
	byClassGroup := lo.GroupBy(ids, func(session int) string { return problem.Sessions[session].ClassGroup })
	byTeacher := lo.GroupBy(ids, func(session int) string { return problem.Teachers[session] })
	byCourse := lo.GroupBy(ids, func(session int) [2]string {
		return [2]string{problem.Sessions[session].ClassGroup, problem.Sessions[session].Course}
	})

	classGroups := lo.Keys(byClassGroup)
	slices.Sort(classGroups)
	teachers := lo.Keys(byTeacher)
	slices.Sort(teachers)
	courses := lo.Keys(byCourse)
	slices.SortFunc(courses, func(a, b [2]string) int { return slices.Compare(a[:], b[:]) })

	//** Hard constraints
	// A class-group cannot attend two sessions at once
	for _, classGroup := range classGroups {
		model.addHard(newAllDifferent(RuleClassGroupOverlap, byClassGroup[classGroup], classGroup, "", rules.MatchingScopeLimit))
	}

	// A teacher cannot teach two sessions at once
	for _, teacher := range teachers {
		if len(byTeacher[teacher]) > 1 {
			model.addHard(newAllDifferent(RuleTeacherOverlap, byTeacher[teacher], "", teacher, rules.MatchingScopeLimit))
		}
	}

	// A session cannot be held while its teacher is unavailable
	for session := range problem.Sessions {
		if len(problem.Forbidden[session]) > 0 {
			model.addHard(newTeacherAvailability(session, problem.Teachers[session], problem.Forbidden[session]))
		}
	}

	// A class-group cannot attend more than MaxSessionsPerDay sessions a day
	for _, classGroup := range classGroups {
		model.addHard(newMaxPerDay(byClassGroup[classGroup], classGroup, problem.Grid, rules.MaxSessionsPerDay))
	}

	//** Soft constraints
	for _, course := range courses {
		if len(byCourse[course]) > 1 {
			model.soft = append(model.soft, newDistinctDays(byCourse[course], course[0], course[1], problem.Grid, rules.DistinctDaysWeight))
		}
	}
	for _, classGroup := range classGroups {
		model.soft = append(model.soft, newMaxDaysUsed(byClassGroup[classGroup], classGroup, problem.Grid, rules.MaxDaysUsed, rules.MaxDaysWeight))
	}
	for _, classGroup := range classGroups {
		model.soft = append(model.soft, newContiguity(byClassGroup[classGroup], classGroup, problem.Grid, rules.ContiguityWeight))
	}

	return model
}

func (model *Model) addHard(constraint Constraint) {
	model.hard = append(model.hard, constraint)
	for _, session := range constraint.Scope() {
		model.bySession[session] = append(model.bySession[session], constraint)
	}
}

func (model *Model) Problem() *Problem {
	return model.problem
}

func (model *Model) Rules() Rules {
	return model.rules
}

func (model *Model) Hard() []Constraint {
	return model.hard
}

func (model *Model) Soft() []Constraint {
	return model.soft
}

// ConstraintsOf returns the hard constraints whose scope contains the session
func (model *Model) ConstraintsOf(session int) []Constraint {
	return model.bySession[session]
}

// Feasible evaluates every hard constraint against the assignment
func (model *Model) Feasible(assignment Assignment) bool {
	return lo.EveryBy(model.hard, func(constraint Constraint) bool {
		return constraint.Evaluate(assignment)
	})
}

// LowerBound returns a lower bound of the soft penalty of any completion of a partial assignment
func (model *Model) LowerBound(assignment Assignment) int {
	return lo.SumBy(model.soft, func(constraint Constraint) int {
		return constraint.LowerBound(assignment)
	})
}
