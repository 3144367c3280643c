package model

// indexer interface is designed to give a unique timeslot to a (day, block) pair of the weekly grid and vice versa
type indexer interface {
	// Returns the unique timeslot (starting at 1) of a zero-based day and block
	Index(day, block uint64) uint64
	// Returns the zero-based day and block of a timeslot
	Attributes(slot uint64) (day uint64, block uint64)
	// Total amount of timeslots in the grid
	Slots() uint64
}

func newIndexer(days, blocksPerDay uint64) indexer {
	return &indexerImplementation{
		days:         days,
		blocksPerDay: blocksPerDay,
	}
}
