package model

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type Status int

const (
	Infeasible Status = iota
	Solved
)

func (status Status) String() string {
	if status == Solved {
		return "solved"
	}
	return "infeasible"
}

func (status Status) MarshalText() ([]byte, error) {
	return []byte(status.String()), nil
}

// Reasons why a search stopped
const (
	StopExhausted     = "exhausted"
	StopOptimal       = "optimal"
	StopSolutionLimit = "solution-limit"
	StopNodeLimit     = "node-limit"
	StopTimeout       = "timeout"
	StopCancelled     = "cancelled"
)

// budgetCheckInterval is the number of nodes between two clock or context checks
const budgetCheckInterval = 64

type Options struct {
	MaxSolutions   int           // Complete hard-feasible assignments to enumerate (0 means no limit)
	MaxNodes       uint64        // Tentative assignments to try (0 means no limit)
	Timeout        time.Duration // Wall-clock budget (0 means no limit)
	Workers        int           // Workers sharing the first decision (values <= 1 search sequentially)
	BranchAndBound bool          // Prune partial assignments that cannot beat the best penalty
}

func DefaultOptions() Options {
	return Options{
		MaxSolutions:   50,
		Workers:        1,
		BranchAndBound: true,
	}
}

type SearchStats struct {
	Nodes      uint64        `json:"nodes"`
	Backtracks uint64        `json:"backtracks"`
	Solutions  uint64        `json:"solutions"`
	Pruned     uint64        `json:"pruned"`
	Elapsed    time.Duration `json:"elapsed"`
	Stop       string        `json:"stop"`
}

type SearchResult struct {
	Status     Status
	Assignment Assignment // nil unless Solved
	Report     Report
	Stats      SearchStats
}

type frame struct {
	session    int
	position   int // Next candidate position in the session's initial domain
	checkpoint int // Trail length before the session was assigned
}

// searchEngine runs a depth-first backtracking search with forward checking over an explicit stack
// of frames. All of its state is private to one run.
type searchEngine struct {
	model      *Model
	options    Options
	logger     *zap.Logger
	store      *domainStore
	assignment Assignment
	frames     []frame
	deadline   time.Time
	stats      SearchStats

	best        Assignment
	bestReport  Report
	bestPenalty int

	shared     *atomic.Int64   // Best penalty shared among parallel workers (nil when sequential)
	rootValues map[uint64]bool // Values allowed to the first decision (nil means all)
}

func newSearchEngine(model *Model, options Options, logger *zap.Logger) *searchEngine {
	return &searchEngine{
		model:       model,
		options:     options,
		logger:      logger,
		store:       newDomainStore(model.problem),
		assignment:  make(Assignment, len(model.problem.Sessions)),
		frames:      make([]frame, 0, len(model.problem.Sessions)),
		bestPenalty: math.MaxInt,
	}
}

// Search looks for the hard-feasible assignment with the lowest soft penalty it can find within
// the budget. It always returns a Solved result when at least one feasible assignment was reached.
func Search(ctx context.Context, model *Model, options Options, logger *zap.Logger) SearchResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.Workers > 1 {
		return searchParallel(ctx, model, options, logger)
	}

	engine := newSearchEngine(model, options, logger)
	engine.run(ctx)
	return engine.result()
}

func (engine *searchEngine) run(ctx context.Context) {
	start := time.Now()
	if engine.options.Timeout > 0 {
		engine.deadline = start.Add(engine.options.Timeout)
	}
	defer func() {
		engine.stats.Elapsed = time.Since(start)
	}()

	total := len(engine.assignment)
	if total == 0 {
		engine.record()
		engine.stats.Stop = StopOptimal
		return
	}

	engine.push(engine.selectSession())
	for len(engine.frames) > 0 {
		if stop := engine.exceeded(ctx); stop != "" {
			engine.stats.Stop = stop
			break
		}

		top := &engine.frames[len(engine.frames)-1]
		engine.store.Restore(top.checkpoint)

		slot, ok := engine.nextCandidate(top)
		if !ok {
			engine.pop()
			continue
		}

		//** Tentative assignment
		engine.stats.Nodes++
		engine.assignment[top.session] = slot
		if !engine.consistent(top.session) || !engine.propagate(top.session) {
			continue
		}

		if engine.bounded() {
			engine.stats.Pruned++
			continue
		}

		//** Commit
		if len(engine.frames) == total {
			if stop := engine.record(); stop != "" {
				engine.stats.Stop = stop
				break
			}
			continue
		}
		engine.push(engine.selectSession())
	}

	if engine.stats.Stop == "" {
		engine.stats.Stop = StopExhausted
	}

	// Leave no state behind for the caller
	engine.store.Restore(0)
	engine.frames = engine.frames[:0]
	clear(engine.assignment)
}

func (engine *searchEngine) push(session int) {
	engine.frames = append(engine.frames, frame{
		session:    session,
		position:   0,
		checkpoint: engine.store.Checkpoint(),
	})
}

func (engine *searchEngine) pop() {
	top := engine.frames[len(engine.frames)-1]
	engine.assignment[top.session] = 0
	engine.store.Restore(top.checkpoint)
	engine.frames = engine.frames[:len(engine.frames)-1]
	engine.stats.Backtracks++
}

// nextCandidate advances the frame to its next untried live value
func (engine *searchEngine) nextCandidate(top *frame) (uint64, bool) {
	for {
		position, ok := engine.store.next(top.session, top.position)
		if !ok {
			return 0, false
		}
		top.position = position + 1

		slot := engine.store.values[top.session][position]
		if len(engine.frames) == 1 && engine.rootValues != nil && !engine.rootValues[slot] {
			continue
		}
		return slot, true
	}
}

// selectSession picks the unassigned session with the smallest live domain, ties broken by
// session order
func (engine *searchEngine) selectSession() int {
	selected, selectedSize := -1, math.MaxInt
	for session := range engine.assignment {
		if engine.assignment.Assigned(session) {
			continue
		}
		if size := engine.store.Size(session); size < selectedSize {
			selected, selectedSize = session, size
		}
	}
	return selected
}

func (engine *searchEngine) consistent(session int) bool {
	for _, constraint := range engine.model.bySession[session] {
		if !constraint.Check(engine.assignment, session, engine.store) {
			return false
		}
	}
	return true
}

func (engine *searchEngine) propagate(session int) bool {
	for _, constraint := range engine.model.bySession[session] {
		if propagator, ok := constraint.(propagator); ok && !propagator.Propagate(engine.assignment, session, engine.store) {
			return false
		}
	}
	return true
}

func (engine *searchEngine) bounded() bool {
	if !engine.options.BranchAndBound {
		return false
	}
	best := engine.bestKnown()
	return best != math.MaxInt && engine.model.LowerBound(engine.assignment) >= best
}

func (engine *searchEngine) bestKnown() int {
	best := engine.bestPenalty
	if engine.shared != nil {
		best = min(best, int(engine.shared.Load()))
	}
	return best
}

// record scores the complete assignment, keeps it when it improves on the best one and reports
// whether the search must stop
func (engine *searchEngine) record() string {
	engine.stats.Solutions++
	report := Score(engine.model, engine.assignment)

	if report.Penalty < engine.bestPenalty {
		engine.best = engine.assignment.Clone()
		engine.bestReport = report
		engine.bestPenalty = report.Penalty
		engine.publish(report.Penalty)

		engine.logger.Debug("improved assignment",
			zap.Int("penalty", report.Penalty),
			zap.Uint64("solutions", engine.stats.Solutions),
			zap.Uint64("nodes", engine.stats.Nodes),
		)
	}

	if engine.bestPenalty == 0 {
		return StopOptimal
	}
	if engine.options.MaxSolutions > 0 && engine.stats.Solutions >= uint64(engine.options.MaxSolutions) {
		return StopSolutionLimit
	}
	return ""
}

func (engine *searchEngine) publish(penalty int) {
	if engine.shared == nil {
		return
	}
	for {
		current := engine.shared.Load()
		if int64(penalty) >= current || engine.shared.CompareAndSwap(current, int64(penalty)) {
			return
		}
	}
}

func (engine *searchEngine) exceeded(ctx context.Context) string {
	if engine.options.MaxNodes > 0 && engine.stats.Nodes >= engine.options.MaxNodes {
		return StopNodeLimit
	}
	if engine.stats.Nodes%budgetCheckInterval != 0 {
		return ""
	}
	if engine.shared != nil && engine.shared.Load() == 0 && engine.bestPenalty != 0 {
		return StopOptimal
	}
	if !engine.deadline.IsZero() && time.Now().After(engine.deadline) {
		return StopTimeout
	}
	if ctx.Err() != nil {
		return StopCancelled
	}
	return ""
}

func (engine *searchEngine) result() SearchResult {
	result := SearchResult{
		Status: Infeasible,
		Stats:  engine.stats,
		Report: Report{Violations: make([]Violation, 0)},
	}
	if engine.best != nil {
		result.Status = Solved
		result.Assignment = engine.best
		result.Report = engine.bestReport
	}
	return result
}
