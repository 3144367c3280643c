package model

import "slices"

type predicateEvaluatorStandard struct {
	problem *Problem
}

func newPredicateEvaluator(problem *Problem) predicateEvaluator {
	return &predicateEvaluatorStandard{problem: problem}
}

func (evaluator *predicateEvaluatorStandard) SameTeacher(session1, session2 int) bool {
	return evaluator.problem.Teachers[session1] == evaluator.problem.Teachers[session2]
}

func (evaluator *predicateEvaluatorStandard) SameClassGroup(session1, session2 int) bool {
	return evaluator.problem.Sessions[session1].ClassGroup == evaluator.problem.Sessions[session2].ClassGroup
}

func (evaluator *predicateEvaluatorStandard) SameCourse(session1, session2 int) bool {
	return evaluator.SameClassGroup(session1, session2) &&
		evaluator.problem.Sessions[session1].Course == evaluator.problem.Sessions[session2].Course
}

func (evaluator *predicateEvaluatorStandard) TeacherAvailable(session int, slot uint64) bool {
	_, found := slices.BinarySearch(evaluator.problem.Forbidden[session], slot)
	return !found
}

func (evaluator *predicateEvaluatorStandard) SameDay(slot1, slot2 uint64) bool {
	day1, _ := evaluator.problem.indexer.Attributes(slot1)
	day2, _ := evaluator.problem.indexer.Attributes(slot2)
	return day1 == day2
}

func (evaluator *predicateEvaluatorStandard) Consecutive(slot1, slot2 uint64) bool {
	return evaluator.SameDay(slot1, slot2) && slot2 == slot1+1
}
