package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	"github.com/limaJavier/classweek/pkg/config"
	"github.com/limaJavier/classweek/pkg/model"
	"github.com/limaJavier/classweek/pkg/render"
	"github.com/limaJavier/classweek/pkg/sat"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Exit codes shared with the benchmark
const (
	exitSolved             = 10
	exitVerificationFailed = 15
	exitInfeasible         = 20
	exitError              = 1
)

var (
	validStrategies = []string{"backtracking", "sat"}
	validFormats    = []string{"text", "json"}

	configPath     string
	verbose        bool
	filePath       string
	outFilePath    string
	assignmentPath string
	strategy       = "backtracking"
	solverName     = "kissat"
	format         = "text"
	timeout        time.Duration
	maxSolutions   int
	workers        int
)

func main() {
	log.SetFlags(0)

	cmdClassweek := &cobra.Command{
		Use:           "classweek",
		Short:         "Weekly class-session timetable generator",
		Long:          "A tool to assign the weekly sessions of every class-group to the timeslots of a fixed grid,\nhonoring teachers' availability and preferring compact weeks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmdClassweek.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json (defaults to $"+config.EnvConfigPath+" or the executable's directory)")
	cmdClassweek.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log search progress")
	cmdClassweek.PersistentFlags().StringVarP(&filePath, "file", "f", "", "path to the dataset file (.json for the JSON form)")

	cmdSolve := &cobra.Command{
		Use:   "solve",
		Short: "build and verify a timetable",
		Run:   CommandSolve,
	}
	cmdSolve.Flags().StringVarP(&strategy, "strategy", "s", strategy, "strategy to build the timetable: "+strings.Join(validStrategies, ", "))
	cmdSolve.Flags().StringVar(&solverName, "solver", solverName, "SAT solver used by the sat strategy: "+strings.Join(sat.Solvers(), ", "))
	cmdSolve.Flags().StringVar(&format, "format", format, "output format: "+strings.Join(validFormats, ", "))
	cmdSolve.Flags().StringVarP(&outFilePath, "out", "o", "", "file where the output will be written; if empty, it'll be written into the standard output")
	cmdSolve.Flags().DurationVarP(&timeout, "timeout", "t", 0, "wall-clock budget of the search (overrides the config)")
	cmdSolve.Flags().IntVarP(&maxSolutions, "max-solutions", "k", 0, "feasible timetables to enumerate (overrides the config)")
	cmdSolve.Flags().IntVar(&workers, "workers", 0, "concurrent search workers (overrides the config)")
	cmdClassweek.AddCommand(cmdSolve)

	cmdShow := &cobra.Command{
		Use:   "show",
		Short: "display the dataset",
		Run:   CommandShow,
	}
	cmdClassweek.AddCommand(cmdShow)

	cmdScore := &cobra.Command{
		Use:   "score",
		Short: "score an existing assignment",
		Run:   CommandScore,
	}
	cmdScore.Flags().StringVarP(&assignmentPath, "assignment", "a", "", "path to the assignment json")
	cmdClassweek.AddCommand(cmdScore)

	if err := cmdClassweek.Execute(); err != nil {
		log.Println(err)
		os.Exit(exitError)
	}
}

func CommandSolve(cmd *cobra.Command, args []string) {
	if len(args) > 0 {
		fatalf("unknown option: %s", strings.Join(args, " "))
	}

	// Validate arguments
	strategy, solverName, format = strings.ToLower(strategy), strings.ToLower(solverName), strings.ToLower(format)
	if !slices.Contains(validStrategies, strategy) {
		fatalf("%v is not a valid strategy", strategy)
	} else if !slices.Contains(sat.Solvers(), solverName) {
		fatalf("%v is not a valid solver", solverName)
	} else if !slices.Contains(validFormats, format) {
		fatalf("%v is not a valid format", format)
	} else if timeout < 0 || maxSolutions < 0 || workers < 0 {
		fatalf("timeout, max-solutions and workers must be >= 0")
	}

	configuration, logger, dataset := setup()
	defer logger.Sync()

	if timeout > 0 {
		configuration.Search.Timeout = timeout
	}
	if maxSolutions > 0 {
		configuration.Search.MaxSolutions = maxSolutions
	}
	if workers > 0 {
		configuration.Search.Workers = workers
	}

	// Initialize engines
	grid := configuration.ModelGrid()
	var timetabler model.Timetabler
	if strategy == "sat" {
		solver, err := sat.NewSolver(solverName, configuration.SolverPath(solverName))
		if err != nil {
			fatalf("%v", err)
		}
		timetabler = model.NewSatTimetabler(solver, grid, configuration.ModelRules(), logger)
	} else {
		timetabler = model.NewBacktrackingTimetabler(grid, configuration.ModelRules(), configuration.SearchOptions(), logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Build timetable
	result, err := timetabler.Build(ctx, dataset)
	var configurationError *model.ConfigurationError
	if errors.As(err, &configurationError) {
		fatalf("%v", configurationError)
	} else if err != nil {
		fatalf("an error occurred during timetable construction: %v", err)
	}

	if result.Status == model.Infeasible {
		render.WriteReport(os.Stderr, result)
		logger.Sync()
		os.Exit(exitInfeasible)
	}

	// Verify timetable correctness
	if !timetabler.Verify(result, dataset) {
		logger.Error("timetable failed verification", zap.Stringer("id", result.Id))
		render.WriteReport(os.Stderr, result)
		logger.Sync()
		os.Exit(exitVerificationFailed)
	}

	cells := render.Project(result, dataset, grid)
	if err := writeOutput(cells, result, dataset.ClassGroupOrder, grid); err != nil {
		fatalf("an error occurred while writing the output: %v", err)
	}

	render.WriteReport(os.Stderr, result)
	stop()
	logger.Sync()
	os.Exit(exitSolved)
}

// writeOutput writes the timetable to the output file if any, else to the standard output
func writeOutput(cells []render.Cell, result model.SchedulingResult, classGroups []string, grid model.Grid) error {
	out := io.Writer(os.Stdout)
	if outFilePath != "" {
		file, err := os.Create(outFilePath)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	if format == "json" {
		return render.WriteJson(out, result, cells)
	}
	return render.WriteTimetables(out, cells, classGroups, grid)
}

func CommandShow(cmd *cobra.Command, args []string) {
	_, logger, dataset := setup()
	defer logger.Sync()

	if err := render.WriteDataset(os.Stdout, dataset); err != nil {
		fatalf("%v", err)
	}
}

func CommandScore(cmd *cobra.Command, args []string) {
	if assignmentPath == "" {
		fatalf("an assignment file must be specified")
	}

	configuration, logger, dataset := setup()
	defer logger.Sync()

	file, err := os.Open(assignmentPath)
	if err != nil {
		fatalf("cannot open assignment file: %v", err)
	}
	defer file.Close()

	mapping, err := render.ReadAssignment(file)
	if err != nil {
		fatalf("%v", err)
	}

	problem, err := model.BuildProblem(dataset, configuration.ModelGrid())
	if err != nil {
		fatalf("%v", err)
	}
	constraints := model.NewModel(problem, configuration.ModelRules())
	assignment := problem.Assignment(mapping)
	if !assignment.Complete() {
		logger.Warn("assignment does not place every session",
			zap.Int("sessions", len(problem.Sessions)),
			zap.Int("placed", len(problem.Mapping(assignment))),
		)
	}

	if err := render.WriteScore(os.Stdout, model.Score(constraints, assignment)); err != nil {
		fatalf("%v", err)
	}
}

// setup loads the configuration, builds the logger and reads the dataset shared by every command
func setup() (config.Config, *zap.Logger, model.Dataset) {
	if filePath == "" {
		fatalf("an input file must be specified")
	}

	configuration, err := config.Load(configPath)
	if err != nil {
		fatalf("%v", err)
	}

	logger, err := newLogger(verbose)
	if err != nil {
		fatalf("cannot build logger: %v", err)
	}

	dataset, err := model.DatasetFromFile(filePath, logger)
	if err != nil {
		fatalf("cannot parse input file: %v", err)
	}
	return configuration, logger, dataset
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return loggerConfig.Build()
}

func fatalf(format string, args ...any) {
	log.Printf(format, args...)
	os.Exit(exitError)
}
