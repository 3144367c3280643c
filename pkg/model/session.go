package model

import (
	"cmp"
	"fmt"
)

// Session is one weekly occurrence of a course for a class-group. Sessions are the variables of
// the scheduling problem.
type Session struct {
	ClassGroup string
	Course     string
	Index      uint64
}

func (session Session) String() string {
	return fmt.Sprintf("%v~%v~%d", session.ClassGroup, session.Course, session.Index)
}

// Compare orders sessions lexicographically by class-group, course and index
func (session Session) Compare(other Session) int {
	if c := cmp.Compare(session.ClassGroup, other.ClassGroup); c != 0 {
		return c
	}
	if c := cmp.Compare(session.Course, other.Course); c != 0 {
		return c
	}
	return cmp.Compare(session.Index, other.Index)
}

// Assignment maps a session id (its position in Problem.Sessions) to a timeslot, where 0 stands
// for an unassigned session
type Assignment []uint64

func (assignment Assignment) Assigned(session int) bool {
	return assignment[session] != 0
}

func (assignment Assignment) Complete() bool {
	for _, slot := range assignment {
		if slot == 0 {
			return false
		}
	}
	return true
}

func (assignment Assignment) Clone() Assignment {
	clone := make(Assignment, len(assignment))
	copy(clone, assignment)
	return clone
}
