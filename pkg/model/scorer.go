package model

// Violation describes one soft (or, when re-scoring an external assignment, hard) constraint that
// the assignment does not fully satisfy
type Violation struct {
	Rule       string `json:"rule"`
	Hard       bool   `json:"hard"`
	ClassGroup string `json:"classGroup,omitempty"`
	Course     string `json:"course,omitempty"`
	Teacher    string `json:"teacher,omitempty"`
	Penalty    int    `json:"penalty"`
	Message    string `json:"message"`
}

type Report struct {
	Penalty        int         `json:"penalty"`
	Violations     []Violation `json:"violations"`
	HardViolations []Violation `json:"hardViolations,omitempty"`
}

// Score sums the weighted violations of the soft constraints. It is a pure function of the model
// and the assignment; unassigned sessions contribute no penalty. Violated hard constraints are
// listed apart and never added to the penalty.
func Score(model *Model, assignment Assignment) Report {
	report := Report{Violations: make([]Violation, 0)}

	for _, constraint := range model.soft {
		penalty := constraint.Penalty(assignment)
		if penalty == 0 {
			continue
		}
		report.Penalty += penalty
		report.Violations = append(report.Violations, violationOf(constraint, assignment, penalty))
	}

	for _, constraint := range model.hard {
		if !constraint.Evaluate(assignment) {
			report.HardViolations = append(report.HardViolations, violationOf(constraint, assignment, constraint.Penalty(assignment)))
		}
	}

	return report
}

func violationOf(constraint Constraint, assignment Assignment, penalty int) Violation {
	classGroup, course, teacher := constraint.Subject()
	return Violation{
		Rule:       constraint.Rule(),
		Hard:       constraint.Hard(),
		ClassGroup: classGroup,
		Course:     course,
		Teacher:    teacher,
		Penalty:    penalty,
		Message:    constraint.Describe(assignment),
	}
}
