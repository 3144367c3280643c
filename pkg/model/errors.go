package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoTeacher   = errors.New("course has no teacher")
	ErrEmptyDomain = errors.New("session has no admissible timeslot")
	ErrInvalidGrid = errors.New("grid must have at least one day and one block")
)

// ConfigurationError reports a dataset that cannot be turned into a scheduling problem.
// It is raised before any search begins.
type ConfigurationError struct {
	Err     error
	Session *Session
	Course  string
	Teacher string
	Reason  string
}

func (err *ConfigurationError) Error() string {
	var builder strings.Builder
	builder.WriteString("configuration error: ")
	builder.WriteString(err.Err.Error())
	if err.Session != nil {
		fmt.Fprintf(&builder, " (session %v", *err.Session)
		if err.Teacher != "" {
			fmt.Fprintf(&builder, ", teacher %v", err.Teacher)
		}
		builder.WriteString(")")
	} else if err.Course != "" {
		fmt.Fprintf(&builder, " (course %v)", err.Course)
	}
	if err.Reason != "" {
		fmt.Fprintf(&builder, ": %v", err.Reason)
	}
	return builder.String()
}

func (err *ConfigurationError) Unwrap() error {
	return err.Err
}
