package model

type permutationGeneratorImplementation struct {
	n int
}

func (generator *permutationGeneratorImplementation) ConstrainedPermutations(size int, constraints []func(permutation []int) bool) [][]int {
	permutations := make([][]int, 0)
	if size <= 0 || size > generator.n {
		return permutations
	}
	generator.constrainedPermutations(constraints, size, 0, make([]int, 0, size), &permutations)
	return permutations
}

func (generator *permutationGeneratorImplementation) constrainedPermutations(
	constraints []func(permutation []int) bool,
	size int,
	start int,
	permutation []int,
	permutations *[][]int) {

	if len(permutation) == size {
		permutationCopy := make([]int, len(permutation))
		copy(permutationCopy, permutation)
		*permutations = append(*permutations, permutationCopy)
		return
	}

	// Leave enough indices for the remaining positions
	for i := start; i <= generator.n-(size-len(permutation)); i++ {
		permutation = append(permutation, i)
		constraintViolated := false
		for _, constraint := range constraints {
			if !constraint(permutation) {
				constraintViolated = true
				break
			}
		}

		if !constraintViolated {
			generator.constrainedPermutations(constraints, size, i+1, permutation, permutations)
		}
		permutation = permutation[:len(permutation)-1]
	}
}
