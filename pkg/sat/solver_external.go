package sat

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Exit-code of 10 stands for satisfiable and exit-code 20 stands for unsatisfiable
const (
	exitSatisfiable   = 10
	exitUnsatisfiable = 20
)

type outputMode int

const (
	// The model is printed to the standard output as "v" lines (SAT competition format)
	competitionOutput outputMode = iota
	// The model is written to a file given as the last argument (minisat format)
	fileOutput
)

// externalSolver runs a SAT solver executable on a temporary DIMACS file
type externalSolver struct {
	name string
	path string
	args []string
	mode outputMode
}

var defaultPaths = map[string]string{
	"kissat":  "kissat",
	"cadical": "cadical",
	"minisat": "minisat",
	"glucose": "glucose-simp",
	"slime":   "slime",
}

// Solvers returns the names of the supported solvers
func Solvers() []string {
	names := lo.Keys(defaultPaths)
	slices.Sort(names)
	return names
}

// NewSolver builds the named solver; an empty path falls back to the executable's usual name
func NewSolver(name, path string) (SATSolver, error) {
	switch name {
	case "kissat":
		return NewKissatSolver(path), nil
	case "cadical":
		return NewCadicalSolver(path), nil
	case "minisat":
		return NewMinisatSolver(path), nil
	case "glucose":
		return NewGlucoseSolver(path), nil
	case "slime":
		return NewSlimeSolver(path), nil
	}
	return nil, fmt.Errorf("%v is not a valid solver", name)
}

func NewKissatSolver(path string) SATSolver {
	return &externalSolver{name: "kissat", path: lo.CoalesceOrEmpty(path, defaultPaths["kissat"]), args: []string{"-q", "--relaxed"}}
}

func NewCadicalSolver(path string) SATSolver {
	return &externalSolver{name: "cadical", path: lo.CoalesceOrEmpty(path, defaultPaths["cadical"]), args: []string{"-q"}}
}

func NewMinisatSolver(path string) SATSolver {
	return &externalSolver{name: "minisat", path: lo.CoalesceOrEmpty(path, defaultPaths["minisat"]), args: []string{"-verb=0"}, mode: fileOutput}
}

func NewGlucoseSolver(path string) SATSolver {
	return &externalSolver{name: "glucose", path: lo.CoalesceOrEmpty(path, defaultPaths["glucose"]), args: []string{"-verb=0"}, mode: fileOutput}
}

func NewSlimeSolver(path string) SATSolver {
	return &externalSolver{name: "slime", path: lo.CoalesceOrEmpty(path, defaultPaths["slime"])}
}

func (solver *externalSolver) Solve(ctx context.Context, instance SAT) (SATSolution, error) {
	// Write the DIMACS content to a temporary file
	inputFile, err := os.CreateTemp("", "dimacs-*.cnf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(inputFile.Name())

	if _, err := inputFile.WriteString(instance.ToDIMACS()); err != nil {
		inputFile.Close()
		return nil, fmt.Errorf("failed to write DIMACS to temporary file: %w", err)
	}
	if err := inputFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temporary file: %w", err)
	}

	args := slices.Concat(solver.args, []string{inputFile.Name()})
	outputName := ""
	if solver.mode == fileOutput {
		outputFile, err := os.CreateTemp("", solver.name+"-output-*.txt")
		if err != nil {
			return nil, fmt.Errorf("failed to create temporary file: %w", err)
		}
		outputName = outputFile.Name()
		outputFile.Close()
		defer os.Remove(outputName)
		args = append(args, outputName)
	}

	cmd := exec.CommandContext(ctx, solver.path, args...)
	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	err = cmd.Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%v execution interrupted: %w", solver.name, ctx.Err())
	}
	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	if err != nil && exitCode != exitSatisfiable && exitCode != exitUnsatisfiable {
		return nil, fmt.Errorf("an error occurred during %v execution: %w: %v", solver.name, err, strings.TrimSpace(stdErr.String()))
	} else if exitCode == exitUnsatisfiable {
		return nil, nil
	}

	if solver.mode == fileOutput {
		output, err := os.ReadFile(outputName)
		if err != nil {
			return nil, fmt.Errorf("failed to read output file: %w", err)
		}
		return parseModelFile(string(output))
	}
	return parseSolution(stdOut.String())
}
