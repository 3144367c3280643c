package model

import "fmt"

var (
	DefaultDayNames   = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	DefaultBlockNames = []string{"09h-11h", "11h-13h", "14h-16h", "16h-18h"}
)

// Grid describes the geometry of the weekly timetable. It is passed to the domain builder and
// the search engine on construction, so runs with different grids can coexist.
type Grid struct {
	Days         uint64
	BlocksPerDay uint64
	DayNames     []string
	BlockNames   []string
}

func DefaultGrid() Grid {
	return Grid{
		Days:         5,
		BlocksPerDay: 4,
		DayNames:     DefaultDayNames[:5],
		BlockNames:   DefaultBlockNames,
	}
}

func (grid Grid) Slots() uint64 {
	return grid.indexer().Slots()
}

func (grid Grid) indexer() indexer {
	return newIndexer(grid.Days, grid.BlocksPerDay)
}

// Day returns the zero-based day of a timeslot
func (grid Grid) Day(slot uint64) uint64 {
	day, _ := grid.indexer().Attributes(slot)
	return day
}

// Block returns the zero-based block (time of day) of a timeslot
func (grid Grid) Block(slot uint64) uint64 {
	_, block := grid.indexer().Attributes(slot)
	return block
}

func (grid Grid) Slot(day, block uint64) uint64 {
	return grid.indexer().Index(day, block)
}

func (grid Grid) DayName(day uint64) string {
	if day < uint64(len(grid.DayNames)) {
		return grid.DayNames[day]
	}
	return fmt.Sprintf("Day %d", day+1)
}

func (grid Grid) BlockName(block uint64) string {
	if block < uint64(len(grid.BlockNames)) {
		return grid.BlockNames[block]
	}
	return fmt.Sprintf("Block %d", block+1)
}

func (grid Grid) validate() error {
	if grid.Days == 0 || grid.BlocksPerDay == 0 {
		return &ConfigurationError{Err: ErrInvalidGrid, Reason: fmt.Sprintf("%d days x %d blocks", grid.Days, grid.BlocksPerDay)}
	}
	return nil
}
