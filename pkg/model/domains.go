package model

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// Problem is the expansion of a dataset into sessions and their initial domains. It is built once
// per run and never modified afterwards.
type Problem struct {
	Grid      Grid
	Sessions  []Session  // Sorted by (class-group, course, index); the position is the session id
	Teachers  []string   // Teacher of each session
	Domains   [][]uint64 // Initial ascending domain of each session
	Forbidden [][]uint64 // Unavailable timeslots (within the grid) of each session's teacher

	ids     map[Session]int
	indexer indexer
}

// BuildProblem emits the sessions of every (class-group, course) pair and computes each session's
// domain as the grid's timeslots minus the unavailable timeslots of the course's teacher
func BuildProblem(dataset Dataset, grid Grid) (*Problem, error) {
	if err := grid.validate(); err != nil {
		return nil, err
	}

	problem := &Problem{
		Grid:    grid,
		ids:     make(map[Session]int),
		indexer: newIndexer(grid.Days, grid.BlocksPerDay),
	}

	//** Emit sessions
	sessions := make([]Session, 0)
	for _, classGroup := range dataset.ClassGroupOrder {
		for _, course := range lo.Uniq(dataset.ClassGroups[classGroup]) {
			for index := range dataset.SessionsPerWeek(course) {
				sessions = append(sessions, Session{ClassGroup: classGroup, Course: course, Index: index + 1})
			}
		}
	}
	slices.SortFunc(sessions, Session.Compare)
	sessions = slices.CompactFunc(sessions, func(a, b Session) bool { return a == b })

	//** Compute domains
	totalSlots := problem.indexer.Slots()
	problem.Sessions = sessions
	problem.Teachers = make([]string, len(sessions))
	problem.Domains = make([][]uint64, len(sessions))
	problem.Forbidden = make([][]uint64, len(sessions))

	for id, session := range sessions {
		teacher, ok := dataset.TeacherOf(session.Course)
		if !ok {
			return nil, &ConfigurationError{Err: ErrNoTeacher, Session: &session, Course: session.Course}
		}

		unavailable := lo.SliceToMap(dataset.Unavailable[teacher], func(slot uint64) (uint64, bool) { return slot, true })
		domain := make([]uint64, 0, totalSlots)
		forbidden := make([]uint64, 0)
		for slot := uint64(1); slot <= totalSlots; slot++ {
			if unavailable[slot] {
				forbidden = append(forbidden, slot)
				continue
			}
			domain = append(domain, slot)
		}

		if len(domain) == 0 {
			return nil, &ConfigurationError{
				Err:     ErrEmptyDomain,
				Session: &session,
				Course:  session.Course,
				Teacher: teacher,
				Reason:  fmt.Sprintf("teacher is unavailable on all %d timeslots", totalSlots),
			}
		}

		problem.Teachers[id] = teacher
		problem.Domains[id] = domain
		problem.Forbidden[id] = forbidden
		problem.ids[session] = id
	}

	return problem, nil
}

// Id returns the position of a session in Sessions
func (problem *Problem) Id(session Session) (int, bool) {
	id, ok := problem.ids[session]
	return id, ok
}

// Assignment converts a session-keyed mapping into an id-indexed assignment; unknown sessions and
// timeslots outside of the grid are ignored, so their sessions stay unassigned
func (problem *Problem) Assignment(mapping map[Session]uint64) Assignment {
	assignment := make(Assignment, len(problem.Sessions))
	for session, slot := range mapping {
		if id, ok := problem.ids[session]; ok && slot >= 1 && slot <= problem.indexer.Slots() {
			assignment[id] = slot
		}
	}
	return assignment
}

func (problem *Problem) Mapping(assignment Assignment) map[Session]uint64 {
	mapping := make(map[Session]uint64, len(assignment))
	for id, slot := range assignment {
		if slot != 0 {
			mapping[problem.Sessions[id]] = slot
		}
	}
	return mapping
}
