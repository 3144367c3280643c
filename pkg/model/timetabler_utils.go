package model

import (
	"slices"

	"github.com/samber/lo"
)

// verify rebuilds the problem from the dataset and checks the result from scratch: every session
// is placed exactly once inside the grid, no class-group or teacher is double booked, teachers are
// available and no class-group exceeds its daily cap. The reported penalty must match the one
// recomputed from the assignment.
func verify(result SchedulingResult, dataset Dataset, grid Grid, rules Rules) bool {
	if result.Status != Solved {
		return false
	}

	problem, err := BuildProblem(dataset, grid)
	if err != nil {
		return false
	}

	//** Completeness
	if len(result.Assignment) != len(problem.Sessions) {
		return false
	}
	slots := make([]uint64, len(problem.Sessions))
	for id, session := range problem.Sessions {
		slot, ok := result.Assignment[session]
		if !ok || slot < 1 || slot > grid.Slots() {
			return false
		}
		slots[id] = slot
	}

	evaluator := newPredicateEvaluator(problem)

	for session1 := range slots {
		// Check that:
		// - Teacher is available at the slot
		// - Class-group and teacher are not already assisting at the slot
		// - Class-group does not exceed its sessions per day
		if !evaluator.TeacherAvailable(session1, slots[session1]) {
			return false
		}

		sameDay := 1
		for session2 := range slots {
			if session1 == session2 {
				continue
			}
			if slots[session1] == slots[session2] &&
				(evaluator.SameClassGroup(session1, session2) || evaluator.SameTeacher(session1, session2)) {
				return false
			}
			if evaluator.SameClassGroup(session1, session2) && evaluator.SameDay(slots[session1], slots[session2]) {
				sameDay++
			}
		}
		if sameDay > rules.MaxSessionsPerDay {
			return false
		}
	}

	return penalty(problem, evaluator, slots, rules) == result.Penalty
}

// penalty recomputes the soft penalty of a complete assignment through the session predicates
func penalty(problem *Problem, evaluator predicateEvaluator, slots []uint64, rules Rules) int {
	total := 0

	// Sessions of a course sharing a day
	for session1 := range slots {
		for session2 := session1 + 1; session2 < len(slots); session2++ {
			if evaluator.SameCourse(session1, session2) && evaluator.SameDay(slots[session1], slots[session2]) {
				total += rules.DistinctDaysWeight
			}
		}
	}

	byClassGroup := lo.GroupBy(lo.Range(len(slots)), func(session int) string { return problem.Sessions[session].ClassGroup })
	for _, sessions := range byClassGroup {
		classGroupSlots := lo.Map(sessions, func(session int, _ int) uint64 { return slots[session] })
		slices.Sort(classGroupSlots)

		// Days used above the limit
		days := lo.Uniq(lo.Map(classGroupSlots, func(slot uint64, _ int) uint64 { return problem.Grid.Day(slot) }))
		total += max(len(days)-rules.MaxDaysUsed, 0) * rules.MaxDaysWeight

		// Gaps between same-day sessions
		for i := 1; i < len(classGroupSlots); i++ {
			previous, current := classGroupSlots[i-1], classGroupSlots[i]
			if evaluator.SameDay(previous, current) && !evaluator.Consecutive(previous, current) {
				total += rules.ContiguityWeight
			}
		}
	}

	return total
}
