package model

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// searchParallel partitions the domain of the first decision among independent workers. Workers
// own their domains and trail and only share the best penalty found so far, which they use to
// prune partial assignments that cannot improve on it. Budgets apply to each worker.
func searchParallel(ctx context.Context, model *Model, options Options, logger *zap.Logger) SearchResult {
	start := time.Now()

	probe := newSearchEngine(model, options, logger)
	if len(probe.assignment) == 0 {
		probe.run(ctx)
		return probe.result()
	}

	//** Partition the first decision's domain round-robin
	root := probe.selectSession()
	values := probe.store.Values(root)
	workers := min(options.Workers, len(values))
	partitions := make([]map[uint64]bool, workers)
	for i, slot := range values {
		if partitions[i%workers] == nil {
			partitions[i%workers] = make(map[uint64]bool)
		}
		partitions[i%workers][slot] = true
	}

	shared := &atomic.Int64{}
	shared.Store(math.MaxInt64)

	engines := make([]*searchEngine, workers)
	group, groupCtx := errgroup.WithContext(ctx)
	for worker := range workers {
		engine := newSearchEngine(model, options, logger.With(zap.Int("worker", worker)))
		engine.shared = shared
		engine.rootValues = partitions[worker]
		engines[worker] = engine

		group.Go(func() error {
			engine.run(groupCtx)
			return nil
		})
	}
	_ = group.Wait()

	//** Merge workers' results; ties go to the smallest first-decision value
	result := SearchResult{Status: Infeasible, Report: Report{Violations: make([]Violation, 0)}}
	bestRoot := uint64(math.MaxUint64)
	exhausted := true
	for _, engine := range engines {
		workerResult := engine.result()
		result.Stats.Nodes += workerResult.Stats.Nodes
		result.Stats.Backtracks += workerResult.Stats.Backtracks
		result.Stats.Solutions += workerResult.Stats.Solutions
		result.Stats.Pruned += workerResult.Stats.Pruned

		switch {
		case workerResult.Stats.Stop == StopOptimal:
			result.Stats.Stop = StopOptimal
		case workerResult.Stats.Stop != StopExhausted && result.Stats.Stop == "":
			result.Stats.Stop = workerResult.Stats.Stop
		}
		exhausted = exhausted && workerResult.Stats.Stop == StopExhausted

		if workerResult.Status != Solved {
			continue
		}
		rootSlot := workerResult.Assignment[root]
		if result.Status != Solved ||
			workerResult.Report.Penalty < result.Report.Penalty ||
			(workerResult.Report.Penalty == result.Report.Penalty && rootSlot < bestRoot) {
			result.Status = Solved
			result.Assignment = workerResult.Assignment
			result.Report = workerResult.Report
			bestRoot = rootSlot
		}
	}

	if exhausted {
		result.Stats.Stop = StopExhausted
	}
	result.Stats.Elapsed = time.Since(start)
	return result
}
