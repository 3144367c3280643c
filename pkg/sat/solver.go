package sat

import "context"

type SATSolver interface {
	// Returns a solution of the SAT instance if satisfiable, else returns nil (both are valid outputs where error shall be nil)
	Solve(ctx context.Context, instance SAT) (SATSolution, error)
}
