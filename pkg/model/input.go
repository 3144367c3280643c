package model

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Dataset is the flat description of a school week: which courses each class-group takes, who
// teaches them and when teachers are unavailable. Declaration order is kept for class-groups and
// teachers since the first teacher listing a course is the one who teaches it.
type Dataset struct {
	ClassGroups     map[string][]string // #cc: class-group -> courses
	ClassGroupOrder []string
	SingleSession   map[string]bool     // #olw: courses with one session per week
	TeacherCourses  map[string][]string // #dsd: teacher -> courses
	TeacherOrder    []string
	Unavailable     map[string][]uint64 // #tr: teacher -> unavailable timeslots
	Rooms           map[string]string   // #rr: course -> room
	Remote          map[string][]uint64 // #oc: course -> remote session indices
}

func NewDataset() Dataset {
	return Dataset{
		ClassGroups:     make(map[string][]string),
		ClassGroupOrder: make([]string, 0),
		SingleSession:   make(map[string]bool),
		TeacherCourses:  make(map[string][]string),
		TeacherOrder:    make([]string, 0),
		Unavailable:     make(map[string][]uint64),
		Rooms:           make(map[string]string),
		Remote:          make(map[string][]uint64),
	}
}

func (dataset *Dataset) AddClassGroup(classGroup string, courses ...string) {
	if _, ok := dataset.ClassGroups[classGroup]; !ok {
		dataset.ClassGroupOrder = append(dataset.ClassGroupOrder, classGroup)
	}
	dataset.ClassGroups[classGroup] = courses
}

func (dataset *Dataset) AddTeacher(teacher string, courses ...string) {
	if _, ok := dataset.TeacherCourses[teacher]; !ok {
		dataset.TeacherOrder = append(dataset.TeacherOrder, teacher)
	}
	dataset.TeacherCourses[teacher] = courses
}

// TeacherOf returns the first declared teacher whose course list contains the course
func (dataset *Dataset) TeacherOf(course string) (string, bool) {
	return lo.Find(dataset.TeacherOrder, func(teacher string) bool {
		return slices.Contains(dataset.TeacherCourses[teacher], course)
	})
}

func (dataset *Dataset) IsRemote(course string, index uint64) bool {
	return slices.Contains(dataset.Remote[course], index)
}

func (dataset *Dataset) SessionsPerWeek(course string) uint64 {
	if dataset.SingleSession[course] {
		return 1
	}
	return 2
}

// DatasetFromFile loads a dataset from either its sectioned text form or its JSON form (chosen by
// the ".json" extension)
func DatasetFromFile(file string, logger *zap.Logger) (Dataset, error) {
	if strings.EqualFold(filepath.Ext(file), ".json") {
		return DatasetFromJson(file)
	}

	handle, err := os.Open(file)
	if err != nil {
		return Dataset{}, fmt.Errorf("cannot open dataset file: %w", err)
	}
	defer handle.Close()

	return ParseDataset(handle, logger)
}

var sections = []string{"cc", "olw", "dsd", "tr", "rr", "oc"}

// ParseDataset reads the line-oriented dataset format. Malformed lines are skipped and reported
// as warnings through the logger.
func ParseDataset(reader io.Reader, logger *zap.Logger) (Dataset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dataset := NewDataset()
	scanner := bufio.NewScanner(reader)
	section := ""
	lineNumber := 0

	warn := func(reason string, line string) {
		logger.Warn("skipping malformed dataset line",
			zap.Int("line", lineNumber),
			zap.String("section", section),
			zap.String("reason", reason),
			zap.String("content", line),
		)
	}

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())

		// Ignore empty lines and headers
		if line == "" || strings.HasPrefix(line, "#head") {
			continue
		}

		//** Detect sections
		if strings.HasPrefix(line, "#") {
			marker, ok := lo.Find(sections, func(name string) bool {
				return strings.HasPrefix(line, "#"+name)
			})
			if !ok {
				warn("unknown section marker", line)
				continue
			}
			section = marker
			continue
		}

		parts := strings.Fields(line)

		//** Process payload according to the current section
		switch section {
		case "cc":
			if len(parts) < 2 {
				warn("expected a class-group followed by its courses", line)
				continue
			}
			dataset.AddClassGroup(parts[0], lo.Uniq(parts[1:])...)

		case "olw":
			lo.ForEach(parts, func(course string, _ int) {
				dataset.SingleSession[course] = true
			})

		case "dsd":
			if len(parts) < 2 {
				warn("expected a teacher followed by its courses", line)
				continue
			}
			dataset.AddTeacher(parts[0], parts[1:]...)

		case "tr":
			if len(parts) < 2 {
				warn("expected a teacher followed by timeslots", line)
				continue
			}
			slots, err := parseIntegers(parts[1:])
			if err != nil {
				warn(err.Error(), line)
				continue
			}
			dataset.Unavailable[parts[0]] = slots

		case "rr":
			if len(parts) != 2 {
				warn("expected a course and a room", line)
				continue
			}
			dataset.Rooms[parts[0]] = parts[1]

		case "oc":
			if len(parts) < 2 {
				warn("expected a course followed by session indices", line)
				continue
			}
			indices, err := parseIntegers(parts[1:])
			if err != nil {
				warn(err.Error(), line)
				continue
			}
			dataset.Remote[parts[0]] = indices

		default:
			warn("line outside of any section", line)
		}
	}

	if err := scanner.Err(); err != nil {
		return Dataset{}, fmt.Errorf("cannot read dataset: %w", err)
	}
	return dataset, nil
}

func parseIntegers(tokens []string) ([]uint64, error) {
	values := make([]uint64, 0, len(tokens))
	for _, token := range tokens {
		value, err := strconv.ParseUint(token, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", token)
		}
		values = append(values, value)
	}
	return values, nil
}

type rawTeacher struct {
	Name        string
	Courses     []string
	Unavailable []uint64
}

type rawDataset struct {
	ClassGroups   map[string][]string `mapstructure:"classGroups"`
	Order         []string            `mapstructure:"order"`
	SingleSession []string            `mapstructure:"singleSession"`
	Teachers      []rawTeacher        `mapstructure:"teachers"`
	Rooms         map[string]string   `mapstructure:"rooms"`
	Remote        map[string][]uint64 `mapstructure:"remote"`
}

func DatasetFromJson(file string) (Dataset, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Dataset{}, fmt.Errorf("cannot read dataset file: %w", err)
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return Dataset{}, fmt.Errorf("cannot parse dataset json: %w", err)
	}

	var raw rawDataset
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Dataset{}, err
	}
	if err := decoder.Decode(inputJson); err != nil {
		return Dataset{}, fmt.Errorf("cannot decode dataset json: %w", err)
	}

	return processRawDataset(raw), nil
}

func processRawDataset(raw rawDataset) Dataset {
	dataset := NewDataset()

	// JSON objects are unordered, therefore class-groups follow the explicit order (if any) and
	// then the remaining ones sorted by name
	classGroups := lo.Keys(raw.ClassGroups)
	slices.Sort(classGroups)
	ordered := lo.Filter(raw.Order, func(classGroup string, _ int) bool {
		_, ok := raw.ClassGroups[classGroup]
		return ok
	})
	for _, classGroup := range lo.Uniq(slices.Concat(ordered, classGroups)) {
		dataset.AddClassGroup(classGroup, lo.Uniq(raw.ClassGroups[classGroup])...)
	}

	for _, course := range raw.SingleSession {
		dataset.SingleSession[course] = true
	}
	for _, teacher := range raw.Teachers {
		dataset.AddTeacher(teacher.Name, teacher.Courses...)
		if len(teacher.Unavailable) > 0 {
			dataset.Unavailable[teacher.Name] = teacher.Unavailable
		}
	}
	for course, room := range raw.Rooms {
		dataset.Rooms[course] = room
	}
	for course, indices := range raw.Remote {
		dataset.Remote[course] = indices
	}
	return dataset
}
