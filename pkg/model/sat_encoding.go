package model

import (
	"slices"

	"github.com/limaJavier/classweek/pkg/sat"
)

// satEncoding maps the hard constraints of a model onto a CNF instance. Variable
// session*T + slot stands for "session is held at slot"; the auxiliary variables after them stand
// for "session is held on day".
type satEncoding struct {
	problem  *Problem
	slots    uint64
	instance sat.SAT
}

func encodeModel(model *Model) satEncoding {
	problem := model.problem
	encoding := satEncoding{
		problem: problem,
		slots:   problem.Grid.Slots(),
	}
	sessions := uint64(len(problem.Sessions))
	encoding.instance = sat.SAT{
		Variables: sessions*encoding.slots + sessions*problem.Grid.Days,
		Clauses:   make([][]int64, 0),
	}

	//** Every session is held at exactly one slot of its domain
	for session, domain := range problem.Domains {
		atLeastOne := make([]int64, 0, len(domain))
		for _, slot := range domain {
			atLeastOne = append(atLeastOne, encoding.variable(session, slot))
		}
		encoding.add(atLeastOne)

		for _, pair := range newPermutationGenerator(len(domain)).ConstrainedPermutations(2, nil) {
			encoding.add([]int64{-encoding.variable(session, domain[pair[0]]), -encoding.variable(session, domain[pair[1]])})
		}
	}

	for _, constraint := range model.hard {
		scope := constraint.Scope()

		switch constraint.Kind() {
		case Unary:
			for _, slot := range problem.Forbidden[scope[0]] {
				encoding.add([]int64{-encoding.variable(scope[0], slot)})
			}

		case AllDifferent:
			for _, pair := range newPermutationGenerator(len(scope)).ConstrainedPermutations(2, nil) {
				session1, session2 := scope[pair[0]], scope[pair[1]]
				for _, slot := range problem.Domains[session1] {
					if _, found := slices.BinarySearch(problem.Domains[session2], slot); found {
						encoding.add([]int64{-encoding.variable(session1, slot), -encoding.variable(session2, slot)})
					}
				}
			}

		case GroupCount:
			limit := constraint.(*maxPerDay).limit
			encoding.encodeMaxPerDay(scope, limit)
		}
	}

	return encoding
}

// encodeMaxPerDay links every slot variable to its day variable and forbids any limit+1 sessions
// of the scope from sharing a day
func (encoding *satEncoding) encodeMaxPerDay(scope []int, limit int) {
	grid := encoding.problem.Grid
	onDay := make([]map[int]bool, grid.Days)
	for day := range onDay {
		onDay[day] = make(map[int]bool)
	}

	for _, session := range scope {
		for _, slot := range encoding.problem.Domains[session] {
			day := grid.Day(slot)
			onDay[day][session] = true
			encoding.add([]int64{-encoding.variable(session, slot), encoding.dayVariable(session, day)})
		}
	}

	generator := newPermutationGenerator(len(scope))
	for day := range grid.Days {
		subsets := generator.ConstrainedPermutations(limit+1, []func(permutation []int) bool{
			func(permutation []int) bool {
				return onDay[day][scope[permutation[len(permutation)-1]]]
			},
		})
		for _, subset := range subsets {
			clause := make([]int64, 0, len(subset))
			for _, position := range subset {
				clause = append(clause, -encoding.dayVariable(scope[position], day))
			}
			encoding.add(clause)
		}
	}
}

func (encoding *satEncoding) add(clause []int64) {
	encoding.instance.Clauses = append(encoding.instance.Clauses, clause)
}

func (encoding *satEncoding) variable(session int, slot uint64) int64 {
	return int64(uint64(session)*encoding.slots + slot)
}

func (encoding *satEncoding) dayVariable(session int, day uint64) int64 {
	sessions := uint64(len(encoding.problem.Sessions))
	return int64(sessions*encoding.slots + uint64(session)*encoding.problem.Grid.Days + day + 1)
}

// decode reads the slot of every session from the positive slot literals of a solution
func (encoding *satEncoding) decode(solution sat.SATSolution) Assignment {
	assignment := make(Assignment, len(encoding.problem.Sessions))
	limit := int64(len(encoding.problem.Sessions)) * int64(encoding.slots)
	for _, literal := range solution {
		if literal <= 0 || literal > limit {
			continue
		}
		session := (uint64(literal) - 1) / encoding.slots
		slot := (uint64(literal)-1)%encoding.slots + 1
		if assignment[session] == 0 {
			assignment[session] = slot
		}
	}
	return assignment
}

// assignmentLiterals turns an assignment into a full set of literals over the encoding's variables
func (encoding *satEncoding) assignmentLiterals(assignment Assignment) sat.SATSolution {
	grid := encoding.problem.Grid
	solution := make(sat.SATSolution, 0, encoding.instance.Variables)
	for session := range encoding.problem.Sessions {
		for slot := uint64(1); slot <= encoding.slots; slot++ {
			literal := encoding.variable(session, slot)
			if assignment[session] != slot {
				literal = -literal
			}
			solution = append(solution, literal)
		}
	}
	for session := range encoding.problem.Sessions {
		for day := range grid.Days {
			literal := encoding.dayVariable(session, day)
			if assignment[session] == 0 || grid.Day(assignment[session]) != day {
				literal = -literal
			}
			solution = append(solution, literal)
		}
	}
	return solution
}
