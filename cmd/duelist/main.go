// Package main provides the CLI entry point for duelist, a round-robin
// benchmark runner for game-playing agents.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/weiihann/duelist/agent"
	"github.com/weiihann/duelist/bench"
	"github.com/weiihann/duelist/config"
	"github.com/weiihann/duelist/history"
	"github.com/weiihann/duelist/match"
	"github.com/weiihann/duelist/report"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)

	root := newRootCmd(logger, level)
	err := root.ExecuteContext(ctx)
	stop()

	if err != nil {
		logger.Error("duelist failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	root := &cobra.Command{
		Use:   "duelist",
		Short: "Round-robin benchmark runner for game-playing agents",
		Long: `Duelist plays every ordered pair of agents against each other through
a game coordinator, reports win ratios, and caches results so pairings
that were already measured are not played again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger, level))

	return root
}

func newRunCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var (
		configPath  string
		cachePath   string
		historyPath string
		ignoreCache bool
		outputJSON  bool
		verbose     bool
		noColor     bool
	)

	cmd := &cobra.Command{
		Use:   "run ITERATIONS AGENT,AGENT[,...]",
		Short: "Benchmark every ordered pair of agents",
		Long: `Play ITERATIONS matches for every ordered pair of the comma-separated
agents. Both orderings of a pair are benchmarked separately since the
agent in role 1 may have an advantage.`,
		Example: "  duelist run 10 random_agent.py,minimax_agent.py --ignore-cache",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			iterations, agents, err := parseArgs(args[0], args[1])
			if err != nil {
				return err
			}

			if verbose {
				level.Set(slog.LevelDebug)
			}

			return runBenchmark(cmd.Context(), logger, runConfig{
				iterations:  iterations,
				agents:      agents,
				configPath:  configPath,
				cachePath:   cachePath,
				historyPath: historyPath,
				ignoreCache: ignoreCache,
				outputJSON:  outputJSON,
				noColor:     noColor,
				stdout:      cmd.OutOrStdout(),
				stderr:      cmd.ErrOrStderr(),
			})
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&ignoreCache, "ignore-cache", false,
		"Re-run pairings even if a cached result exists")
	flags.StringVar(&configPath, "config", "",
		"Path to a YAML config file (default: built-in settings)")
	flags.StringVar(&cachePath, "cache", "",
		"Path to the result cache (default: benchmarks.cache)")
	flags.StringVar(&historyPath, "history", "",
		"Append one JSON line per match to this file")
	flags.BoolVar(&outputJSON, "json", false,
		"Print the final summary as JSON instead of a table")
	flags.BoolVarP(&verbose, "verbose", "v", false,
		"Log coordinator output and process lifecycle")
	flags.BoolVar(&noColor, "no-color", false,
		"Disable colored output")

	return cmd
}

type runConfig struct {
	iterations  int
	agents      []string
	configPath  string
	cachePath   string
	historyPath string
	ignoreCache bool
	outputJSON  bool
	noColor     bool
	stdout      io.Writer
	stderr      io.Writer
}

// parseArgs validates the positional arguments: a positive iteration
// count and at least two distinct agent names.
func parseArgs(iterationsArg, agentsArg string) (int, []string, error) {
	iterations, err := strconv.Atoi(iterationsArg)
	if err != nil {
		return 0, nil, fmt.Errorf("parse iterations %q: %w", iterationsArg, err)
	}

	if iterations <= 0 {
		return 0, nil, fmt.Errorf("%w: got %d", bench.ErrNoIterations, iterations)
	}

	var agents []string
	seen := make(map[string]bool)

	for _, name := range strings.Split(agentsArg, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		if seen[name] {
			return 0, nil, fmt.Errorf("agent %q listed more than once", name)
		}

		seen[name] = true
		agents = append(agents, name)
	}

	if len(agents) < 2 {
		return 0, nil, fmt.Errorf(
			"at least two agents are required, got %d", len(agents),
		)
	}

	return iterations, agents, nil
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	rc runConfig,
) error {
	cfg, err := config.Load(rc.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if rc.cachePath != "" {
		cfg.CachePath = rc.cachePath
	}

	logger.InfoContext(ctx, "starting benchmark",
		slog.Int("iterations", rc.iterations),
		slog.Any("agents", rc.agents),
		slog.Bool("ignore_cache", rc.ignoreCache),
		slog.String("cache", cfg.CachePath),
		slog.String("game", cfg.Game.Script),
	)

	// Progress goes to stderr when stdout carries JSON.
	progress := rc.stdout
	if rc.outputJSON {
		progress = rc.stderr
	}

	printer := report.NewPrinter(progress, report.ColorEnabled(progress, rc.noColor))

	var recorder bench.Recorder

	if rc.historyPath != "" {
		h, err := history.Open(rc.historyPath)
		if err != nil {
			return err
		}

		defer func() {
			s := h.Summary()
			logger.InfoContext(ctx, "match history written",
				slog.String("path", rc.historyPath),
				slog.Int("matches", s.Matches),
				slog.Int("decided", s.Decided),
				slog.Int("undecided", s.Undecided),
			)

			if err := h.Close(); err != nil {
				logger.Warn("close history", slog.String("error", err.Error()))
			}
		}()

		recorder = h
	}

	launcher := agent.NewLauncher(cfg, logger)
	runner := match.NewRunner(
		match.FromAgentLauncher(launcher),
		[2]string{
			strconv.Itoa(cfg.AgentPorts[0]),
			strconv.Itoa(cfg.AgentPorts[1]),
		},
		cfg.SettleDelay,
		logger,
	)

	executor := bench.NewExecutor(runner, printer, recorder, logger)
	driver := bench.NewDriver(executor, printer, cfg.CachePath, logger)

	results, err := driver.Start(ctx, rc.agents, rc.iterations, rc.ignoreCache)
	if err != nil {
		return err
	}

	if rc.outputJSON {
		if err := report.GenerateJSON(rc.stdout, results); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	} else {
		if err := report.Generate(rc.stdout, results); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	logger.InfoContext(ctx, "benchmark complete",
		slog.Int("pairings", len(results)),
	)

	return nil
}
