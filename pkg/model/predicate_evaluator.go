package model

type predicateEvaluator interface {
	// Checks whether session1 and session2 are taught by the same teacher
	SameTeacher(session1, session2 int) bool

	// Checks whether session1 and session2 are attended by the same class-group
	SameClassGroup(session1, session2 int) bool

	// Checks whether session1 and session2 are sessions of the same course for the same class-group
	SameCourse(session1, session2 int) bool

	// Checks whether the teacher of the session is available at the given timeslot
	TeacherAvailable(session int, slot uint64) bool

	// Checks whether slot1 and slot2 fall on the same day
	SameDay(slot1, slot2 uint64) bool

	// Checks whether slot2 is the block right after slot1 on the same day
	Consecutive(slot1, slot2 uint64) bool
}
