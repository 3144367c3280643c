package model

type trailEntry struct {
	session  int
	position int
}

// domainStore is the arena of live domains of one search. Every removal is pushed onto the trail,
// so restoring a checkpoint is the exact inverse of the removals done after it.
type domainStore struct {
	values    [][]uint64 // Initial domain of each session
	positions [][]int    // positions[session][slot] = position of slot in values[session], -1 if absent
	alive     [][]bool
	sizes     []int
	trail     []trailEntry
}

func newDomainStore(problem *Problem) *domainStore {
	totalSlots := problem.Grid.Slots()
	store := &domainStore{
		values:    problem.Domains,
		positions: make([][]int, len(problem.Domains)),
		alive:     make([][]bool, len(problem.Domains)),
		sizes:     make([]int, len(problem.Domains)),
		trail:     make([]trailEntry, 0, 64),
	}

	for session, domain := range problem.Domains {
		store.positions[session] = make([]int, totalSlots+1)
		for slot := range store.positions[session] {
			store.positions[session][slot] = -1
		}
		for position, slot := range domain {
			store.positions[session][slot] = position
		}

		store.alive[session] = make([]bool, len(domain))
		for position := range store.alive[session] {
			store.alive[session][position] = true
		}
		store.sizes[session] = len(domain)
	}

	return store
}

func (store *domainStore) Contains(session int, slot uint64) bool {
	if slot >= uint64(len(store.positions[session])) {
		return false
	}
	position := store.positions[session][slot]
	return position >= 0 && store.alive[session][position]
}

func (store *domainStore) Size(session int) int {
	return store.sizes[session]
}

func (store *domainStore) Values(session int) []uint64 {
	values := make([]uint64, 0, store.sizes[session])
	for position, slot := range store.values[session] {
		if store.alive[session][position] {
			values = append(values, slot)
		}
	}
	return values
}

// Remove deletes the slot from the session's live domain and reports whether it was present
func (store *domainStore) Remove(session int, slot uint64) bool {
	if !store.Contains(session, slot) {
		return false
	}
	position := store.positions[session][slot]
	store.alive[session][position] = false
	store.sizes[session]--
	store.trail = append(store.trail, trailEntry{session: session, position: position})
	return true
}

func (store *domainStore) Checkpoint() int {
	return len(store.trail)
}

// Restore undoes every removal done after the checkpoint
func (store *domainStore) Restore(checkpoint int) {
	for len(store.trail) > checkpoint {
		entry := store.trail[len(store.trail)-1]
		store.trail = store.trail[:len(store.trail)-1]
		store.alive[entry.session][entry.position] = true
		store.sizes[entry.session]++
	}
}

// next returns the first live position of the session's domain at or after position
func (store *domainStore) next(session, position int) (int, bool) {
	for ; position < len(store.values[session]); position++ {
		if store.alive[session][position] {
			return position, true
		}
	}
	return 0, false
}
