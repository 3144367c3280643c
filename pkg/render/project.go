package render

import (
	"cmp"
	"slices"

	"github.com/limaJavier/classweek/pkg/model"
)

// Cell is one placed session of the weekly grid
type Cell struct {
	Slot       uint64 `json:"slot" mapstructure:"slot"`
	Day        uint64 `json:"day" mapstructure:"day"`
	Block      uint64 `json:"block" mapstructure:"block"`
	DayName    string `json:"dayName" mapstructure:"dayName"`
	BlockName  string `json:"blockName" mapstructure:"blockName"`
	ClassGroup string `json:"classGroup" mapstructure:"classGroup"`
	Course     string `json:"course" mapstructure:"course"`
	Index      uint64 `json:"index" mapstructure:"index"`
	Room       string `json:"room" mapstructure:"room"`
}

func (cell Cell) Session() model.Session {
	return model.Session{ClassGroup: cell.ClassGroup, Course: cell.Course, Index: cell.Index}
}

// Project turns the assignment of a result into grid cells sorted by class-group, day and block
func Project(result model.SchedulingResult, dataset model.Dataset, grid model.Grid) []Cell {
	cells := make([]Cell, 0, len(result.Assignment))
	for session, slot := range result.Assignment {
		day, block := grid.Day(slot), grid.Block(slot)
		cells = append(cells, Cell{
			Slot:       slot,
			Day:        day,
			Block:      block,
			DayName:    grid.DayName(day),
			BlockName:  grid.BlockName(block),
			ClassGroup: session.ClassGroup,
			Course:     session.Course,
			Index:      session.Index,
			Room:       Room(dataset, session),
		})
	}

	slices.SortFunc(cells, func(a, b Cell) int {
		return cmp.Or(
			cmp.Compare(a.ClassGroup, b.ClassGroup),
			cmp.Compare(a.Day, b.Day),
			cmp.Compare(a.Block, b.Block),
			cmp.Compare(a.Course, b.Course),
		)
	})
	return cells
}

// Room returns "Online" for the remote sessions of a course, then the course's room, then the room
// named after the last character of the class-group
func Room(dataset model.Dataset, session model.Session) string {
	if dataset.IsRemote(session.Course, session.Index) {
		return "Online"
	}
	if room, ok := dataset.Rooms[session.Course]; ok {
		return room
	}
	runes := []rune(session.ClassGroup)
	if len(runes) == 0 {
		return "Room"
	}
	return "Room" + string(runes[len(runes)-1])
}
