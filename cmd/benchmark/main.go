package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/limaJavier/classweek/pkg/model"
	"github.com/limaJavier/classweek/pkg/sat"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultTestDirectory = "../../pkg/model/testdata/"

type TimetablerType int

const (
	backtracking TimetablerType = iota
	parallel
	satBased
)

type ResultType int

const (
	solved ResultType = iota
	infeasible
	failed
)

var (
	timetablerTypes = map[TimetablerType]string{
		backtracking: "backtracking",
		parallel:     "parallel",
		satBased:     "sat",
	}
	resultTypes = map[ResultType]string{
		solved:     "solved",
		infeasible: "infeasible",
		failed:     "failed",
	}

	testDirectory = defaultTestDirectory
	outFilePath   = "benchmark_results.csv"
	solverNames   []string
	timeout       = 10 * time.Second
)

type TestMetadata struct {
	Name        string
	Dataset     model.Dataset
	ClassGroups int
	Teachers    int
	Sessions    int
}

type TimetablerMetadata struct {
	Type         TimetablerType
	Solver       string
	MaxSolutions int
	Workers      int
}

type BenchmarkResult struct {
	Timetabler TimetablerMetadata
	Test       TestMetadata
	Duration   int64
	Nodes      uint64
	Solutions  uint64
	Penalty    int
	Stop       string
	Result     ResultType
}

func main() {
	cmdBenchmark := &cobra.Command{
		Use:   "benchmark",
		Short: "benchmark the timetabling strategies over a directory of datasets",
		Run:   CommandBenchmark,
	}
	cmdBenchmark.Flags().StringVarP(&testDirectory, "dir", "d", testDirectory, "directory holding the datasets")
	cmdBenchmark.Flags().StringVarP(&outFilePath, "out", "o", outFilePath, "CSV file where the results will be written")
	cmdBenchmark.Flags().StringSliceVar(&solverNames, "solvers", nil, "SAT solvers to benchmark (none by default): "+fmt.Sprint(sat.Solvers()))
	cmdBenchmark.Flags().DurationVarP(&timeout, "timeout", "t", timeout, "wall-clock budget of every search")

	if err := cmdBenchmark.Execute(); err != nil {
		log.Fatal(err)
	}
}

func CommandBenchmark(cmd *cobra.Command, args []string) {
	tests, err := getTests(testDirectory)
	if err != nil {
		log.Fatalf("%v", err)
	}
	timetablers := getTimetablers(solverNames)
	results := make([]BenchmarkResult, 0, len(tests)*len(timetablers))

	for _, test := range tests {
		for _, timetabler := range timetablers {
			fmt.Printf("Benchmarking test \"%v\" with strategy \"%v\", solver \"%v\", max-solutions \"%v\" and workers \"%v\"\n",
				test.Name, timetablerTypes[timetabler.Type], timetabler.Solver, timetabler.MaxSolutions, timetabler.Workers)
			results = append(results, measure(timetabler, test))
		}
	}

	file, err := os.Create(outFilePath)
	if err != nil {
		log.Fatalf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	if err := toCsv(file, results); err != nil {
		log.Fatalf("%v", err)
	}
}

func getTests(directory string) ([]TestMetadata, error) {
	testFiles, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory: %w", err)
	}

	tests := make([]TestMetadata, 0)
	for _, file := range testFiles {
		if file.IsDir() || !slices.Contains([]string{".txt", ".json"}, filepath.Ext(file.Name())) {
			continue
		}

		filename := filepath.Join(directory, file.Name())
		dataset, err := model.DatasetFromFile(filename, nil)
		if err != nil {
			return nil, fmt.Errorf("cannot parse input file: %w", err)
		}

		tests = append(tests, TestMetadata{
			Name:        filename,
			Dataset:     dataset,
			ClassGroups: len(dataset.ClassGroupOrder),
			Teachers:    len(dataset.TeacherOrder),
			Sessions: lo.SumBy(dataset.ClassGroupOrder, func(classGroup string) int {
				return lo.SumBy(lo.Uniq(dataset.ClassGroups[classGroup]), func(course string) int {
					return int(dataset.SessionsPerWeek(course))
				})
			}),
		})
	}

	return tests, nil
}

func getTimetablers(solvers []string) []TimetablerMetadata {
	timetablers := []TimetablerMetadata{
		{Type: backtracking, MaxSolutions: 1, Workers: 1},
		{Type: backtracking, MaxSolutions: 50, Workers: 1},
		{Type: backtracking, MaxSolutions: 500, Workers: 1},
		{Type: parallel, MaxSolutions: 50, Workers: 4},
	}
	for _, solver := range solvers {
		timetablers = append(timetablers, TimetablerMetadata{Type: satBased, Solver: solver})
	}
	return timetablers
}

func newTimetabler(metadata TimetablerMetadata) (model.Timetabler, error) {
	grid, rules := model.DefaultGrid(), model.DefaultRules()
	if metadata.Type == satBased {
		solver, err := sat.NewSolver(metadata.Solver, "")
		if err != nil {
			return nil, err
		}
		return model.NewSatTimetabler(solver, grid, rules, zap.NewNop()), nil
	}

	options := model.DefaultOptions()
	options.MaxSolutions = metadata.MaxSolutions
	options.Workers = metadata.Workers
	options.Timeout = timeout
	return model.NewBacktrackingTimetabler(grid, rules, options, zap.NewNop()), nil
}

func measure(metadata TimetablerMetadata, test TestMetadata) BenchmarkResult {
	benchmark := BenchmarkResult{Timetabler: metadata, Test: test, Result: failed}

	timetabler, err := newTimetabler(metadata)
	if err != nil {
		log.Printf("cannot build timetabler: %v", err)
		return benchmark
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*timeout)
	defer cancel()

	start := time.Now()
	result, err := timetabler.Build(ctx, test.Dataset)
	benchmark.Duration = time.Since(start).Milliseconds()
	if err != nil {
		log.Printf("an error occurred at test \"%v\" using strategy \"%v\": %v", test.Name, timetablerTypes[metadata.Type], err)
		return benchmark
	}

	benchmark.Nodes = result.Stats.Nodes
	benchmark.Solutions = result.Stats.Solutions
	benchmark.Penalty = result.Penalty
	benchmark.Stop = result.Stats.Stop
	switch {
	case result.Status == model.Infeasible:
		benchmark.Result = infeasible
	case timetabler.Verify(result, test.Dataset):
		benchmark.Result = solved
	}
	return benchmark
}

func toCsv(w io.Writer, results []BenchmarkResult) error {
	writer := csv.NewWriter(w)

	header := []string{"Timetabler", "Solver", "Max-Solutions", "Workers", "Test", "ClassGroups", "Teachers", "Sessions", "Duration(ms)", "Nodes", "Solutions", "Penalty", "Stop", "Result"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write(toRecord(result)); err != nil {
			return fmt.Errorf("cannot write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func toRecord(result BenchmarkResult) []string {
	return []string{
		timetablerTypes[result.Timetabler.Type],
		result.Timetabler.Solver,
		fmt.Sprintf("%d", result.Timetabler.MaxSolutions),
		fmt.Sprintf("%d", result.Timetabler.Workers),
		result.Test.Name,
		fmt.Sprintf("%d", result.Test.ClassGroups),
		fmt.Sprintf("%d", result.Test.Teachers),
		fmt.Sprintf("%d", result.Test.Sessions),
		fmt.Sprintf("%d", result.Duration),
		fmt.Sprintf("%d", result.Nodes),
		fmt.Sprintf("%d", result.Solutions),
		fmt.Sprintf("%d", result.Penalty),
		result.Stop,
		resultTypes[result.Result],
	}
}
