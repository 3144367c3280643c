package render

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/limaJavier/classweek/pkg/model"
	"github.com/samber/lo"
)

const (
	headerWidth = 12
	cellWidth   = 20
	emptyCell   = "---"
)

// WriteTimetables prints one weekly table per class-group, blocks as rows and days as columns
func WriteTimetables(w io.Writer, cells []Cell, classGroups []string, grid model.Grid) error {
	writer := bufio.NewWriter(w)
	width := headerWidth + 2 + int(grid.Days)*(cellWidth+3)

	byClassGroup := lo.GroupBy(cells, func(cell Cell) string { return cell.ClassGroup })
	for _, classGroup := range classGroups {
		table := make(map[uint64]Cell)
		for _, cell := range byClassGroup[classGroup] {
			table[cell.Slot] = cell
		}

		fmt.Fprintf(writer, "\n%v\n", strings.Repeat("=", width))
		fmt.Fprintf(writer, "TIMETABLE OF CLASS-GROUP %v\n", classGroup)
		fmt.Fprintf(writer, "%v\n", strings.Repeat("=", width))

		fmt.Fprintf(writer, "%-*s |", headerWidth, "Block")
		for day := range grid.Days {
			fmt.Fprintf(writer, " %-*s |", cellWidth, grid.DayName(day))
		}
		fmt.Fprintf(writer, "\n%v\n", strings.Repeat("-", width))

		for block := range grid.BlocksPerDay {
			fmt.Fprintf(writer, "%-*s |", headerWidth, grid.BlockName(block))
			for day := range grid.Days {
				content := emptyCell
				if cell, ok := table[grid.Slot(day, block)]; ok {
					content = fmt.Sprintf("%v %v", cell.Course, cell.Room)
				}
				fmt.Fprintf(writer, " %-*s |", cellWidth, content)
			}
			fmt.Fprintf(writer, "\n%v\n", strings.Repeat("-", width))
		}
	}

	return writer.Flush()
}

type jsonOutput struct {
	model.SchedulingResult
	Cells []Cell `json:"cells"`
}

// WriteJson writes the result together with its cells; the output can be read back by ReadAssignment
func WriteJson(w io.Writer, result model.SchedulingResult, cells []Cell) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(jsonOutput{SchedulingResult: result, Cells: cells})
}

func WriteReport(w io.Writer, result model.SchedulingResult) error {
	writer := bufio.NewWriter(w)

	fmt.Fprintf(writer, "Status: %v\n", result.Status)
	if result.Id != uuid.Nil {
		fmt.Fprintf(writer, "Id: %v\n", result.Id)
	}
	if result.Status == model.Solved {
		fmt.Fprintf(writer, "Penalty: %v\n", result.Penalty)
		for _, violation := range result.Violations {
			fmt.Fprintf(writer, "  - [%v] %v (penalty %v)\n", violation.Rule, violation.Message, violation.Penalty)
		}
	}

	stats := result.Stats
	fmt.Fprintf(writer, "Nodes: %v\n", stats.Nodes)
	fmt.Fprintf(writer, "Backtracks: %v\n", stats.Backtracks)
	fmt.Fprintf(writer, "Solutions: %v\n", stats.Solutions)
	fmt.Fprintf(writer, "Pruned: %v\n", stats.Pruned)
	fmt.Fprintf(writer, "Stop: %v\n", stats.Stop)
	fmt.Fprintf(writer, "Elapsed: %v\n", stats.Elapsed)

	return writer.Flush()
}

// WriteScore prints the report of a re-scored assignment, hard violations included
func WriteScore(w io.Writer, report model.Report) error {
	writer := bufio.NewWriter(w)

	fmt.Fprintf(writer, "Penalty: %v\n", report.Penalty)
	for _, violation := range report.Violations {
		fmt.Fprintf(writer, "  - [%v] %v (penalty %v)\n", violation.Rule, violation.Message, violation.Penalty)
	}
	if len(report.HardViolations) > 0 {
		fmt.Fprintf(writer, "Hard violations: %v\n", len(report.HardViolations))
		for _, violation := range report.HardViolations {
			fmt.Fprintf(writer, "  - [%v] %v\n", violation.Rule, violation.Message)
		}
	}

	return writer.Flush()
}

// WriteDataset prints a summary of every section of the dataset
func WriteDataset(w io.Writer, dataset model.Dataset) error {
	writer := bufio.NewWriter(w)

	fmt.Fprintln(writer, "Class-groups and courses:")
	for _, classGroup := range dataset.ClassGroupOrder {
		fmt.Fprintf(writer, "  %v: %v\n", classGroup, strings.Join(dataset.ClassGroups[classGroup], ", "))
	}

	singleSession := lo.Keys(dataset.SingleSession)
	slices.Sort(singleSession)
	fmt.Fprintf(writer, "Single-session courses: %v\n", strings.Join(singleSession, ", "))

	fmt.Fprintln(writer, "Teachers and courses:")
	for _, teacher := range dataset.TeacherOrder {
		fmt.Fprintf(writer, "  %v: %v\n", teacher, strings.Join(dataset.TeacherCourses[teacher], ", "))
	}

	fmt.Fprintln(writer, "Teacher unavailability:")
	for _, teacher := range sortedKeys(dataset.Unavailable) {
		fmt.Fprintf(writer, "  %v: %v\n", teacher, dataset.Unavailable[teacher])
	}

	fmt.Fprintln(writer, "Course rooms:")
	for _, course := range sortedKeys(dataset.Rooms) {
		fmt.Fprintf(writer, "  %v: %v\n", course, dataset.Rooms[course])
	}

	fmt.Fprintln(writer, "Remote sessions:")
	for _, course := range sortedKeys(dataset.Remote) {
		fmt.Fprintf(writer, "  %v: %v\n", course, dataset.Remote[course])
	}

	return writer.Flush()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
