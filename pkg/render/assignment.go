package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/limaJavier/classweek/pkg/model"
	"github.com/mitchellh/mapstructure"
)

type assignmentEntry struct {
	ClassGroup string `mapstructure:"classGroup"`
	Course     string `mapstructure:"course"`
	Index      uint64 `mapstructure:"index"`
	Slot       uint64 `mapstructure:"slot"`
}

// ReadAssignment reads either a list of {classGroup, course, index, slot} entries or the object
// written by WriteJson
func ReadAssignment(r io.Reader) (map[model.Session]uint64, error) {
	var inputJson any
	if err := json.NewDecoder(r).Decode(&inputJson); err != nil {
		return nil, fmt.Errorf("cannot parse assignment json: %w", err)
	}

	if object, ok := inputJson.(map[string]any); ok {
		cells, ok := object["cells"]
		if !ok {
			return nil, fmt.Errorf("assignment object has no cells")
		}
		inputJson = cells
	}

	var entries []assignmentEntry
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &entries,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(inputJson); err != nil {
		return nil, fmt.Errorf("cannot decode assignment: %w", err)
	}

	assignment := make(map[model.Session]uint64, len(entries))
	for _, entry := range entries {
		session := model.Session{ClassGroup: entry.ClassGroup, Course: entry.Course, Index: entry.Index}
		if _, ok := assignment[session]; ok {
			return nil, fmt.Errorf("session %v is assigned more than once", session)
		}
		assignment[session] = entry.Slot
	}
	return assignment, nil
}
