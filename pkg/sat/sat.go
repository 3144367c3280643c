package sat

import (
	"fmt"
	"strings"
)

// SATSolution is the list of literals of a model: positive if the variable is true, negative otherwise
type SATSolution []int64

// SAT is a CNF instance over variables 1..Variables
type SAT struct {
	Variables uint64
	Clauses   [][]int64
}

func (s SAT) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", s.Variables, len(s.Clauses))
	for _, clause := range s.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}

// Satisfies checks that the solution has neither duplicates nor contradictions and that every
// clause holds under it
func (s SAT) Satisfies(solution SATSolution) bool {
	literals := make(map[int64]bool)
	for _, literal := range solution {
		if literals[literal] || literals[-literal] {
			return false
		}
		literals[literal] = true
	}

	for _, clause := range s.Clauses {
		satisfied := false
		for _, literal := range clause {
			if literals[literal] {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}
