package model

import (
	"fmt"
	"slices"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

type Kind int

const (
	Unary Kind = iota
	AllDifferent
	GroupCount
	GroupPredicate
)

func (kind Kind) String() string {
	switch kind {
	case Unary:
		return "unary"
	case AllDifferent:
		return "all-different"
	case GroupCount:
		return "group-count"
	case GroupPredicate:
		return "group-predicate"
	}
	return "unknown"
}

// Rule names identify what a constraint instance enforces
const (
	RuleClassGroupOverlap   = "class-group-overlap"
	RuleTeacherOverlap      = "teacher-overlap"
	RuleTeacherAvailability = "teacher-availability"
	RuleMaxSessionsPerDay   = "max-sessions-per-day"
	RuleDistinctDays        = "distinct-days"
	RuleMaxDaysUsed         = "max-days-used"
	RuleContiguity          = "same-day-contiguity"
)

// DomainView gives read access to the live domains of the search
type DomainView interface {
	Values(session int) []uint64
	Contains(session int, slot uint64) bool
	Size(session int) int
}

// Constraint is a hard or soft rule bound to an ordered list of sessions. Unassigned sessions
// (timeslot 0) are ignored by every method, so all of them accept partial assignments.
type Constraint interface {
	Kind() Kind
	Rule() string
	Scope() []int
	Hard() bool
	Weight() int

	// ClassGroup, Course and Teacher of the constraint's subject (empty when they do not apply)
	Subject() (classGroup, course, teacher string)

	// Checks whether the assigned sessions in scope satisfy the constraint
	Evaluate(assignment Assignment) bool

	// Checks, after session was tentatively assigned, whether the constraint can still be satisfied
	// by the unassigned sessions in scope
	Check(assignment Assignment, session int, domains DomainView) bool

	// Number of weighted violations
	Penalty(assignment Assignment) int

	// Lower bound of the penalty of any completion of the assignment
	LowerBound(assignment Assignment) int

	// Human readable explanation of the current violation
	Describe(assignment Assignment) string
}

// propagator is implemented by constraints able to prune the domains of unassigned sessions after
// session was assigned. It returns false whenever a domain is wiped out.
type propagator interface {
	Propagate(assignment Assignment, session int, store *domainStore) bool
}

type constraintBase struct {
	rule       string
	scope      []int
	hard       bool
	weight     int
	classGroup string
	course     string
	teacher    string
}

func (base *constraintBase) Rule() string {
	return base.rule
}

func (base *constraintBase) Scope() []int {
	return base.scope
}

func (base *constraintBase) Hard() bool {
	return base.hard
}

func (base *constraintBase) Weight() int {
	return base.weight
}

func (base *constraintBase) Subject() (string, string, string) {
	return base.classGroup, base.course, base.teacher
}

func (base *constraintBase) assignedSlots(assignment Assignment) []uint64 {
	slots := make([]uint64, 0, len(base.scope))
	for _, session := range base.scope {
		if slot := assignment[session]; slot != 0 {
			slots = append(slots, slot)
		}
	}
	return slots
}

func (base *constraintBase) unassigned(assignment Assignment) []int {
	return lo.Filter(base.scope, func(session int, _ int) bool {
		return !assignment.Assigned(session)
	})
}

//** Unary

type teacherAvailability struct {
	constraintBase
	forbidden []uint64 // Ascending
}

func newTeacherAvailability(session int, teacher string, forbidden []uint64) *teacherAvailability {
	return &teacherAvailability{
		constraintBase: constraintBase{
			rule:    RuleTeacherAvailability,
			scope:   []int{session},
			hard:    true,
			weight:  1,
			teacher: teacher,
		},
		forbidden: forbidden,
	}
}

func (constraint *teacherAvailability) Kind() Kind {
	return Unary
}

func (constraint *teacherAvailability) Evaluate(assignment Assignment) bool {
	slot := assignment[constraint.scope[0]]
	if slot == 0 {
		return true
	}
	_, found := slices.BinarySearch(constraint.forbidden, slot)
	return !found
}

func (constraint *teacherAvailability) Check(assignment Assignment, _ int, _ DomainView) bool {
	return constraint.Evaluate(assignment)
}

func (constraint *teacherAvailability) Penalty(assignment Assignment) int {
	return lo.Ternary(constraint.Evaluate(assignment), 0, constraint.weight)
}

func (constraint *teacherAvailability) LowerBound(assignment Assignment) int {
	return constraint.Penalty(assignment)
}

func (constraint *teacherAvailability) Describe(assignment Assignment) string {
	return fmt.Sprintf("teacher %v is unavailable at timeslot %d", constraint.teacher, assignment[constraint.scope[0]])
}

//** AllDifferent

type allDifferent struct {
	constraintBase
	matchingLimit int // Largest scope for which the matching check runs (0 disables it)
}

func newAllDifferent(rule string, scope []int, classGroup, teacher string, matchingLimit int) *allDifferent {
	return &allDifferent{
		constraintBase: constraintBase{
			rule:       rule,
			scope:      scope,
			hard:       true,
			weight:     1,
			classGroup: classGroup,
			teacher:    teacher,
		},
		matchingLimit: matchingLimit,
	}
}

func (constraint *allDifferent) Kind() Kind {
	return AllDifferent
}

func (constraint *allDifferent) Evaluate(assignment Assignment) bool {
	slots := constraint.assignedSlots(assignment)
	return len(lo.Uniq(slots)) == len(slots)
}

func (constraint *allDifferent) Check(assignment Assignment, session int, domains DomainView) bool {
	slot := assignment[session]
	for _, other := range constraint.scope {
		if other != session && assignment[other] == slot {
			return false
		}
	}

	if len(constraint.scope) > constraint.matchingLimit || domains == nil {
		return true
	}
	return constraint.matchable(assignment, domains)
}

// matchable verifies that the unassigned sessions in scope can still take pairwise distinct
// timeslots, that is, the bipartite graph sessions-timeslots has a matching covering every session
func (constraint *allDifferent) matchable(assignment Assignment, domains DomainView) bool {
	used := lo.SliceToMap(constraint.assignedSlots(assignment), func(slot uint64) (uint64, bool) { return slot, true })
	unassigned := constraint.unassigned(assignment)
	if len(unassigned) == 0 {
		return true
	}

	candidates := make(map[int][]uint64, len(unassigned))
	slotSet := make(map[uint64]bool)
	for _, session := range unassigned {
		candidates[session] = lo.Filter(domains.Values(session), func(slot uint64, _ int) bool { return !used[slot] })
		if len(candidates[session]) == 0 {
			return false
		}
		for _, slot := range candidates[session] {
			slotSet[slot] = true
		}
	}
	if len(slotSet) < len(unassigned) {
		return false
	}

	slots := lo.Keys(slotSet)
	slices.Sort(slots)

	neighbours := func(sessionAny any, slotAny any) (bool, error) {
		return slices.Contains(candidates[sessionAny.(int)], slotAny.(uint64)), nil
	}
	sessionsAny := lo.Map(unassigned, func(session int, _ int) any { return session })
	slotsAny := lo.Map(slots, func(slot uint64, _ int) any { return slot })

	graph, err := bipartitegraph.NewBipartiteGraph(sessionsAny, slotsAny, neighbours)
	if err != nil {
		return true // Cannot decide, the assignment will be checked again on later decisions
	}
	return len(graph.LargestMatching()) == len(unassigned)
}

func (constraint *allDifferent) Propagate(assignment Assignment, session int, store *domainStore) bool {
	slot := assignment[session]
	for _, other := range constraint.scope {
		if other == session || assignment[other] != 0 {
			continue
		}
		store.Remove(other, slot)
		if store.Size(other) == 0 {
			return false
		}
	}
	return true
}

func (constraint *allDifferent) Penalty(assignment Assignment) int {
	collisions := 0
	for i, session1 := range constraint.scope {
		for _, session2 := range constraint.scope[i+1:] {
			if assignment[session1] != 0 && assignment[session1] == assignment[session2] {
				collisions++
			}
		}
	}
	return collisions * constraint.weight
}

func (constraint *allDifferent) LowerBound(assignment Assignment) int {
	return constraint.Penalty(assignment)
}

func (constraint *allDifferent) Describe(assignment Assignment) string {
	slots := constraint.assignedSlots(assignment)
	duplicates := lo.FindDuplicates(slots)
	slices.Sort(duplicates)
	if constraint.rule == RuleTeacherOverlap {
		return fmt.Sprintf("teacher %v teaches simultaneous sessions at timeslots %v", constraint.teacher, duplicates)
	}
	return fmt.Sprintf("class-group %v attends simultaneous sessions at timeslots %v", constraint.classGroup, duplicates)
}

//** GroupCount

type maxPerDay struct {
	constraintBase
	grid  Grid
	limit int
}

func newMaxPerDay(scope []int, classGroup string, grid Grid, limit int) *maxPerDay {
	return &maxPerDay{
		constraintBase: constraintBase{
			rule:       RuleMaxSessionsPerDay,
			scope:      scope,
			hard:       true,
			weight:     1,
			classGroup: classGroup,
		},
		grid:  grid,
		limit: limit,
	}
}

func (constraint *maxPerDay) Kind() Kind {
	return GroupCount
}

func (constraint *maxPerDay) perDay(assignment Assignment) []int {
	counts := make([]int, constraint.grid.Days)
	for _, slot := range constraint.assignedSlots(assignment) {
		counts[constraint.grid.Day(slot)]++
	}
	return counts
}

func (constraint *maxPerDay) Evaluate(assignment Assignment) bool {
	return lo.EveryBy(constraint.perDay(assignment), func(count int) bool { return count <= constraint.limit })
}

func (constraint *maxPerDay) Check(assignment Assignment, session int, _ DomainView) bool {
	counts := constraint.perDay(assignment)
	if counts[constraint.grid.Day(assignment[session])] > constraint.limit {
		return false
	}

	// The remaining sessions must fit in the capacity left over the week
	capacity := lo.SumBy(counts, func(count int) int { return max(constraint.limit-count, 0) })
	return capacity >= len(constraint.unassigned(assignment))
}

// Propagate removes the timeslots of a saturated day from the domains of the unassigned sessions
func (constraint *maxPerDay) Propagate(assignment Assignment, session int, store *domainStore) bool {
	day := constraint.grid.Day(assignment[session])
	if constraint.perDay(assignment)[day] < constraint.limit {
		return true
	}

	for _, other := range constraint.unassigned(assignment) {
		for block := range constraint.grid.BlocksPerDay {
			store.Remove(other, constraint.grid.Slot(day, block))
		}
		if store.Size(other) == 0 {
			return false
		}
	}
	return true
}

func (constraint *maxPerDay) Penalty(assignment Assignment) int {
	return lo.SumBy(constraint.perDay(assignment), func(count int) int { return max(count-constraint.limit, 0) }) * constraint.weight
}

func (constraint *maxPerDay) LowerBound(assignment Assignment) int {
	return constraint.Penalty(assignment)
}

func (constraint *maxPerDay) Describe(assignment Assignment) string {
	days := make([]string, 0)
	for day, count := range constraint.perDay(assignment) {
		if count > constraint.limit {
			days = append(days, fmt.Sprintf("%v (%d)", constraint.grid.DayName(uint64(day)), count))
		}
	}
	return fmt.Sprintf("class-group %v has more than %d sessions on %v", constraint.classGroup, constraint.limit, days)
}

//** GroupPredicate

type predicate int

const (
	distinctDays predicate = iota
	maxDaysUsed
	contiguity
)

type groupPredicate struct {
	constraintBase
	predicate predicate
	grid      Grid
	limit     int
}

func newDistinctDays(scope []int, classGroup, course string, grid Grid, weight int) *groupPredicate {
	return &groupPredicate{
		constraintBase: constraintBase{
			rule:       RuleDistinctDays,
			scope:      scope,
			weight:     weight,
			classGroup: classGroup,
			course:     course,
		},
		predicate: distinctDays,
		grid:      grid,
	}
}

func newMaxDaysUsed(scope []int, classGroup string, grid Grid, limit, weight int) *groupPredicate {
	return &groupPredicate{
		constraintBase: constraintBase{
			rule:       RuleMaxDaysUsed,
			scope:      scope,
			weight:     weight,
			classGroup: classGroup,
		},
		predicate: maxDaysUsed,
		grid:      grid,
		limit:     limit,
	}
}

func newContiguity(scope []int, classGroup string, grid Grid, weight int) *groupPredicate {
	return &groupPredicate{
		constraintBase: constraintBase{
			rule:       RuleContiguity,
			scope:      scope,
			weight:     weight,
			classGroup: classGroup,
		},
		predicate: contiguity,
		grid:      grid,
	}
}

func (constraint *groupPredicate) Kind() Kind {
	return GroupPredicate
}

func (constraint *groupPredicate) Evaluate(assignment Assignment) bool {
	return constraint.violations(assignment) == 0
}

// Soft predicates never reject a tentative assignment
func (constraint *groupPredicate) Check(Assignment, int, DomainView) bool {
	return true
}

func (constraint *groupPredicate) Penalty(assignment Assignment) int {
	return constraint.violations(assignment) * constraint.weight
}

// LowerBound is exact for distinct-days and max-days-used since adding sessions never removes
// their violations; gaps between same-day sessions may still be filled so contiguity contributes 0
func (constraint *groupPredicate) LowerBound(assignment Assignment) int {
	if constraint.predicate == contiguity {
		return 0
	}
	return constraint.Penalty(assignment)
}

func (constraint *groupPredicate) violations(assignment Assignment) int {
	slots := constraint.assignedSlots(assignment)

	switch constraint.predicate {
	case distinctDays:
		pairs := 0
		for i := range slots {
			for j := i + 1; j < len(slots); j++ {
				if constraint.grid.Day(slots[i]) == constraint.grid.Day(slots[j]) {
					pairs++
				}
			}
		}
		return pairs

	case maxDaysUsed:
		days := lo.Uniq(lo.Map(slots, func(slot uint64, _ int) uint64 { return constraint.grid.Day(slot) }))
		return max(len(days)-constraint.limit, 0)

	case contiguity:
		gaps := 0
		for _, daySlots := range constraint.byDay(slots) {
			for i := 1; i < len(daySlots); i++ {
				if daySlots[i] != daySlots[i-1]+1 {
					gaps++
				}
			}
		}
		return gaps
	}
	return 0
}

func (constraint *groupPredicate) byDay(slots []uint64) map[uint64][]uint64 {
	days := lo.GroupBy(slots, func(slot uint64) uint64 { return constraint.grid.Day(slot) })
	for _, daySlots := range days {
		slices.Sort(daySlots)
	}
	return days
}

func (constraint *groupPredicate) Describe(assignment Assignment) string {
	slots := constraint.assignedSlots(assignment)
	switch constraint.predicate {
	case distinctDays:
		return fmt.Sprintf("sessions of course %v for class-group %v share a day", constraint.course, constraint.classGroup)
	case maxDaysUsed:
		days := len(lo.Uniq(lo.Map(slots, func(slot uint64, _ int) uint64 { return constraint.grid.Day(slot) })))
		return fmt.Sprintf("class-group %v attends sessions on %d days (at most %d preferred)", constraint.classGroup, days, constraint.limit)
	case contiguity:
		return fmt.Sprintf("class-group %v has %d gap(s) between same-day sessions", constraint.classGroup, constraint.violations(assignment))
	}
	return ""
}
