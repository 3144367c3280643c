package sat

import (
	"context"
	"math/rand"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSolver(t *testing.T) {
	for _, name := range Solvers() {
		//** Act
		solver, err := NewSolver(name, "/opt/solvers/"+name)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, "/opt/solvers/"+name, solver.(*externalSolver).path)
	}

	_, err := NewSolver("lingeling", "")
	assert.Error(t, err)

	solver, err := NewSolver("glucose", "")
	require.NoError(t, err)
	assert.Equal(t, "glucose-simp", solver.(*externalSolver).path)
}

func TestExternalSolvers(t *testing.T) {
	for _, name := range Solvers() {
		t.Run(name, func(t *testing.T) {
			if _, err := exec.LookPath(defaultPaths[name]); err != nil {
				t.Skipf("%v is not installed", name)
			}
			solver, err := NewSolver(name, "")
			require.NoError(t, err)

			t.Run("Satisfiable instances", func(t *testing.T) {
				satisfiableExecution(t, solver)
			})
			t.Run("Unsatisfiable instance", func(t *testing.T) {
				//** Arrange
				instance := SAT{Variables: 1, Clauses: [][]int64{{1}, {-1}}}

				//** Act
				solution, err := solver.Solve(context.Background(), instance)

				//** Assert
				assert.NoError(t, err)
				assert.Nil(t, solution)
			})
		})
	}
}

func TestMissingExecutable(t *testing.T) {
	//** Arrange
	solver := NewKissatSolver("/nonexistent/kissat")

	//** Act
	_, err := solver.Solve(context.Background(), SAT{Variables: 1, Clauses: [][]int64{{1}}})

	//** Assert
	assert.Error(t, err)
}

func satisfiableExecution(t *testing.T, solver SATSolver) {
	random := rand.New(rand.NewSource(42))
	for range 5 {
		//** Arrange
		instance, _ := generateSATInstance(random, 30, 90)

		//** Act
		solution, err := solver.Solve(context.Background(), instance)

		//** Assert
		require.NoError(t, err)
		require.NotNil(t, solution)
		assert.True(t, instance.Satisfies(solution))
	}
}

// generateSATInstance builds a random 3-CNF instance satisfied by a hidden assignment
func generateSATInstance(random *rand.Rand, variables, clauses int) (SAT, SATSolution) {
	hidden := make(SATSolution, variables)
	for variable := range variables {
		hidden[variable] = int64(variable + 1)
		if random.Intn(2) == 0 {
			hidden[variable] = -hidden[variable]
		}
	}

	instance := SAT{Variables: uint64(variables), Clauses: make([][]int64, 0, clauses)}
	for range clauses {
		clause := make([]int64, 3)
		for i := range clause {
			clause[i] = int64(random.Intn(variables) + 1)
			if random.Intn(2) == 0 {
				clause[i] = -clause[i]
			}
		}
		// Make sure the hidden assignment satisfies the clause
		position := random.Intn(len(clause))
		clause[position] = hidden[clause[position]*sign(clause[position])-1]
		instance.Clauses = append(instance.Clauses, clause)
	}
	return instance, hidden
}

func sign(literal int64) int64 {
	if literal < 0 {
		return -1
	}
	return 1
}

func TestGenerateSATInstance(t *testing.T) {
	//** Act
	instance, hidden := generateSATInstance(rand.New(rand.NewSource(7)), 10, 40)

	//** Assert
	assert.Len(t, instance.Clauses, 40)
	assert.True(t, instance.Satisfies(hidden))
}
