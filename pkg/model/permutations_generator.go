package model

type permutationGenerator interface {
	// Returns every strictly increasing permutation of the given size over the indices [0, n) that holds the constraints.
	// Constraints are evaluated on every prefix of a permutation, so they must only rely on its last element and the ones before it.
	//
	// Example:
	//
	//	generator := newPermutationGenerator(5)
	//
	//	permutations := generator.ConstrainedPermutations(2, []func(permutation []int) bool{
	//				func(permutation []int) bool {
	//					// Discard permutations containing index 3
	//					return permutation[len(permutation)-1] != 3
	//				},
	//			})
	ConstrainedPermutations(size int, constraints []func(permutation []int) bool) [][]int
}

func newPermutationGenerator(n int) permutationGenerator {
	return &permutationGeneratorImplementation{n: n}
}
