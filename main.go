//go:build !lambda

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// BenchOutput is the JSON-serializable result of a full benchmark run.
type BenchOutput struct {
	Date    string        `json:"date"`
	Workers int           `json:"workers"`
	CPUs    int           `json:"cpus"`
	Results []SolveReport `json:"results"`
	TotalMs int64         `json:"totalMs"`
}

var (
	configPath  string
	verbose     bool
	jsonOut     bool
	metricsAddr string

	iterations int
	alpha      float64
	reactive   bool
	alphaPool  []float64
	updateFreq int
	seed       int64
	workers    int
	timeLimit  time.Duration
	direction  string

	rootCmd = &cobra.Command{
		Use:   "grasp-optimizer",
		Short: "GRASP and Reactive GRASP for QBF and set-cover QBF instances",
		Long: `grasp-optimizer searches subsets that optimize a quadratic binary function,
optionally subject to covering a universe with the selected subsets.

Instances are JSON documents (.json) or whitespace-separated text files in the
MAX-QBF / MAX-SC-QBF course format.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	solveCmd = &cobra.Command{
		Use:   "solve <instance>",
		Short: "Solve a single instance and print the best solution",
		Args:  cobra.ExactArgs(1),
		RunE:  runSingle,
	}

	benchCmd = &cobra.Command{
		Use:   "bench <instance>...",
		Short: "Solve several instances and print a summary table",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAll,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file")
	pf.BoolVar(&verbose, "verbose", false, "Print detailed search progress to stderr")
	pf.BoolVar(&jsonOut, "json", false, "Output results as JSON")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	pf.IntVar(&iterations, "iterations", 0, "Number of GRASP iterations")
	pf.Float64Var(&alpha, "alpha", 0, "Fixed alpha (implies --reactive=false)")
	pf.BoolVar(&reactive, "reactive", true, "Use the reactive alpha pool")
	pf.Float64SliceVar(&alphaPool, "pool", nil, "Reactive alpha pool, e.g. 0.1,0.3,0.5")
	pf.IntVar(&updateFreq, "update-freq", 0, "Iterations between alpha probability rebalances")
	pf.Int64Var(&seed, "seed", 0, "Random seed (0 = fixed default)")
	pf.IntVar(&workers, "workers", 0, "Iterations run concurrently per batch (at least 1)")
	pf.DurationVar(&timeLimit, "time-limit", 0, "Stop between iterations after this long")
	pf.StringVar(&direction, "direction", "", "Override the instance direction (min|max)")

	rootCmd.AddCommand(solveCmd, benchCmd)
}

// resolveConfig applies explicitly set flags on top of the loaded config.
func resolveConfig(cmd *cobra.Command) (Config, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	f := cmd.Flags()
	if f.Changed("iterations") {
		cfg.Iterations = iterations
	}
	if f.Changed("reactive") {
		cfg.Reactive = reactive
	}
	if f.Changed("alpha") {
		cfg.Alpha = alpha
		if !f.Changed("reactive") {
			cfg.Reactive = false
		}
	}
	if f.Changed("pool") {
		cfg.AlphaPool = alphaPool
	}
	if f.Changed("update-freq") {
		cfg.UpdateFrequency = updateFreq
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("workers") {
		cfg.Workers = workers
	}
	if f.Changed("time-limit") {
		cfg.TimeLimit = timeLimit
	}
	return cfg, cfg.Validate()
}

func loadForRun(path string) (*Instance, error) {
	in, err := LoadInstance(path)
	if err != nil {
		return nil, err
	}
	if direction != "" {
		dir, err := ParseDirection(direction)
		if err != nil {
			return nil, err
		}
		in.Direction = dir
	}
	return in, nil
}

// startMetrics serves reg on metricsAddr; the returned func stops the server.
func startMetrics(reg *prometheus.Registry, log *slog.Logger) func() {
	if metricsAddr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()
	log.Info("serving metrics", "addr", metricsAddr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func runSingle(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(os.Stderr, cfg.LogLevel, verbose, false)
	reg := prometheus.NewRegistry()
	stop := startMetrics(reg, log)
	defer stop()

	in, err := loadForRun(args[0])
	if err != nil {
		return err
	}
	res, err := solveInstance(cmd.Context(), in, cfg, log, NewMetrics(reg))
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(NewSolveReport(in, res))
	}
	var pool []float64
	if cfg.Reactive {
		pool = cfg.AlphaPool
	}
	fmt.Print(FormatResult(in, res, pool))
	return nil
}

func runAll(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(os.Stderr, cfg.LogLevel, verbose, false)
	reg := prometheus.NewRegistry()
	stop := startMetrics(reg, log)
	defer stop()
	metrics := NewMetrics(reg)

	var reports []SolveReport
	var totalMs int64
	for i, path := range args {
		in, err := loadForRun(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "[%d/%d] %s ...\n", i+1, len(args), in.Name)
		res, err := solveInstance(cmd.Context(), in, cfg, log, metrics)
		if err != nil {
			return err
		}
		r := NewSolveReport(in, res)
		reports = append(reports, r)
		totalMs += r.TimeMs
		fmt.Fprintf(os.Stderr, "  %s: %g in %.1fs\n", r.Name, r.Cost, float64(r.TimeMs)/1000)
		if cmd.Context().Err() != nil {
			break
		}
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(BenchOutput{
			Date:    time.Now().UTC().Format(time.RFC3339),
			Workers: cfg.Workers,
			CPUs:    runtime.NumCPU(),
			Results: reports,
			TotalMs: totalMs,
		})
	}
	printTable(reports, totalMs)
	return nil
}

func printTable(reports []SolveReport, totalMs int64) {
	fmt.Printf("%-24s %6s %14s %6s %8s\n", "Instance", "n", "Cost", "Size", "Time")
	fmt.Printf("%-24s %6s %14s %6s %8s\n", "------------------------", "------", "--------------", "------", "--------")
	for _, r := range reports {
		flag := ""
		if !r.Feasible || (r.Covered != nil && !*r.Covered) {
			flag = " !"
		}
		fmt.Printf("%-24s %6d %14.4f %6d %7.1fs%s\n", r.Name, r.N, r.Cost, len(r.Elements), float64(r.TimeMs)/1000, flag)
	}
	fmt.Printf("%-24s %6s %14s %6s %8s\n", "------------------------", "------", "--------------", "------", "--------")
	fmt.Printf("%-24s %6s %14s %6s %7.1fs\n", "TOTAL", "", "", "", float64(totalMs)/1000)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
