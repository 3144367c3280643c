package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/limaJavier/classweek/pkg/model"
	"github.com/limaJavier/classweek/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOutput() ([]render.Cell, model.SchedulingResult) {
	result := model.SchedulingResult{
		Id:         uuid.New(),
		Status:     model.Solved,
		Assignment: map[model.Session]uint64{{ClassGroup: "T1", Course: "MAT", Index: 1}: 6},
		Violations: make([]model.Violation, 0),
	}
	cells := []render.Cell{{Slot: 6, Day: 1, Block: 1, DayName: "Tuesday", BlockName: "11h-13h", ClassGroup: "T1", Course: "MAT", Index: 1, Room: "Room1"}}
	return cells, result
}

func TestWriteOutputToFile(t *testing.T) {
	//** Arrange
	cells, result := testOutput()
	outFilePath = filepath.Join(t.TempDir(), "timetable.json")
	format = "json"
	t.Cleanup(func() { outFilePath, format = "", "text" })

	//** Act
	err := writeOutput(cells, result, []string{"T1"}, model.DefaultGrid())

	//** Assert
	require.NoError(t, err)
	content, err := os.ReadFile(outFilePath)
	require.NoError(t, err)
	var output map[string]any
	require.NoError(t, json.Unmarshal(content, &output))
	assert.Equal(t, "solved", output["status"])
	assert.Len(t, output["cells"], 1)
}

func TestWriteOutputTextToFile(t *testing.T) {
	//** Arrange
	cells, result := testOutput()
	outFilePath = filepath.Join(t.TempDir(), "timetable.txt")
	t.Cleanup(func() { outFilePath = "" })

	//** Act
	err := writeOutput(cells, result, []string{"T1"}, model.DefaultGrid())

	//** Assert
	require.NoError(t, err)
	content, err := os.ReadFile(outFilePath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "MAT Room1")
}

func TestWriteOutputInvalidPath(t *testing.T) {
	//** Arrange
	cells, result := testOutput()
	outFilePath = filepath.Join(t.TempDir(), "missing", "timetable.txt")
	t.Cleanup(func() { outFilePath = "" })

	//** Act
	err := writeOutput(cells, result, []string{"T1"}, model.DefaultGrid())

	//** Assert
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	//** Act
	quiet, err := newLogger(false)
	require.NoError(t, err)
	verboseLogger, err := newLogger(true)
	require.NoError(t, err)

	//** Assert
	assert.False(t, quiet.Core().Enabled(zap.InfoLevel))
	assert.True(t, quiet.Core().Enabled(zap.WarnLevel))
	assert.True(t, verboseLogger.Core().Enabled(zap.DebugLevel))
}
