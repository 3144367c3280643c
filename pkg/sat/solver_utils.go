package sat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// parseSolution extracts the model from "v" lines of the SAT competition output format
func parseSolution(solverOutput string) (SATSolution, error) {
	lines := lo.Filter(strings.Split(solverOutput, "\n"), func(line string, _ int) bool {
		return len(line) > 0 && line[0] == 'v'
	})
	tokens := lo.FlatMap(lines, func(line string, _ int) []string {
		return strings.Fields(line[1:])
	})
	return parseLiterals(tokens)
}

// parseModelFile reads the minisat output format: a "SAT"/"UNSAT" header followed by the model
func parseModelFile(output string) (SATSolution, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "UNSAT" {
		return nil, nil
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("missing model in solver output")
	}
	return parseLiterals(strings.Fields(lines[1]))
}

func parseLiterals(tokens []string) (SATSolution, error) {
	solution := make(SATSolution, 0, len(tokens))
	for _, token := range tokens {
		value, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal in solver output: %w", err)
		}
		if value == 0 { // Terminator
			continue
		}
		solution = append(solution, value)
	}
	return solution, nil
}
