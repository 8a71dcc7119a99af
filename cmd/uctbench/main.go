// Command uctbench is the experiment driver: it loads a toy domain,
// instantiates one engine variant, runs it, and appends one CSV row, mirroring
// the original planner's run_uct.py (spec.md §6 "Experiment driver").
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"

	"golang.org/x/sync/errgroup"

	"phgnuct"
	"phgnuct/factoreduct"
	"phgnuct/fixtures"
	"phgnuct/progress"
	"phgnuct/stats"
	"phgnuct/unfactoreduct"
)

var (
	domain        = flag.String("domain", "chain", "toy domain: chain, method, coinflip, multigoal")
	problemInst   = flag.String("problem_instance", "default", "problem instance label, logged verbatim")
	variant       = flag.String("variant", "factored", "factored or unfactored")
	outputFile    = flag.String("output_file", "results.csv", "CSV file to append the run's row to")
	nRollouts     = flag.Int("n-rollouts", 100, "rollouts per decision")
	horizon       = flag.Int("horizon", 20, "max recursion depth")
	budget        = flag.Int("budget", 100, "max action steps before FAILURE_BUDGET")
	seed          = flag.Int64("seed", 0, "RNG seed")
	telemetryAddr = flag.String("telemetry-addr", "", "non-empty enables the live progress websocket server, e.g. :8080")
	compareSeeds  = flag.Int("compare-seeds", 0, "if > 0, run both variants across this many seeds and report a Welch t-test on cumulative cost instead of a single CSV row")
)

// csvHeader mirrors UCT_CONFIG_PARAMS_TO_LOG from run_uct.py.
var csvHeader = []string{
	"domain", "problem_instance", "variant", "result", "cost", "num_nodes",
	"n_rollouts", "horizon", "budget", "exploration_const",
	"normalize_exploration_const", "n_init", "risk_factor", "goal_utility", "seed",
}

func main() {
	flag.Parse()

	if *compareSeeds > 0 {
		if err := runCompare(*compareSeeds); err != nil {
			fmt.Fprintln(os.Stderr, "uctbench:", err)
			os.Exit(1)
		}
		return
	}

	cfg := buildConfig()
	row := runOnce(cfg, *domain, *problemInst, *variant)
	if err := appendRow(*outputFile, row); err != nil {
		fmt.Fprintln(os.Stderr, "uctbench:", err)
		os.Exit(1)
	}
}

func buildConfig() phgnuct.Config {
	cfg := phgnuct.DefaultConfig()
	cfg.NRollouts = *nRollouts
	cfg.Horizon = *horizon
	cfg.Budget = *budget
	s := *seed
	cfg.Seed = &s
	cfg.TelemetryAddr = *telemetryAddr
	return cfg
}

// runOnce executes a single run, catching any error the way run_uct.py's
// driver does: logging result="ERROR", cost=-1, num_nodes=-1.
func runOnce(cfg phgnuct.Config, domainName, problemInstance, variantName string) []string {
	result, err := execute(cfg, domainName, variantName)
	if err != nil {
		return row(domainName, problemInstance, variantName, "ERROR", -1, -1, cfg)
	}
	return row(domainName, problemInstance, variantName, result.Outcome.String(), result.CumulativeCost, result.NumNodes, cfg)
}

func execute(cfg phgnuct.Config, domainName, variantName string) (phgnuct.RunResult, error) {
	sim, gtn, err := fixtures.Load(domainName)
	if err != nil {
		return phgnuct.RunResult{}, err
	}

	ctx := context.Background()

	switch variantName {
	case "factored":
		engine := factoreduct.NewEngine(sim, cfg)
		stop := wireTelemetry(ctx, cfg.TelemetryAddr, func(snapshots chan<- factoreduct.Snapshot) { engine.Progress = snapshots })
		defer stop()
		return engine.Run(ctx, gtn)
	case "unfactored":
		engine := unfactoreduct.NewEngine(sim, cfg)
		stop := wireTelemetry(ctx, cfg.TelemetryAddr, func(snapshots chan<- unfactoreduct.Snapshot) { engine.Progress = snapshots })
		defer stop()
		return engine.Run(ctx, gtn)
	default:
		return phgnuct.RunResult{}, fmt.Errorf("unknown variant %q", variantName)
	}
}

// wireTelemetry, when addr is non-empty, starts the progress websocket
// server in the background and hands the caller's engine a channel to emit
// snapshots on; assign hooks that channel into the engine's Progress field.
// It returns a stop func that tears down the forwarding goroutine.
func wireTelemetry[S any](ctx context.Context, addr string, assign func(chan<- S)) func() {
	if addr == "" {
		return func() {}
	}

	raw := make(chan S, 8)
	assign(raw)

	forwarded := make(chan progress.Snapshot, 8)
	done := make(chan struct{})
	go func() {
		defer close(forwarded)
		for {
			select {
			case <-done:
				return
			case s, ok := <-raw:
				if !ok {
					return
				}
				select {
				case forwarded <- toProgressSnapshot(s):
				default:
				}
			}
		}
	}()

	server := progress.NewServer(ctx, addr, forwarded)
	go func() {
		if err := server.Serve(); err != nil {
			log.Println("uctbench: telemetry server:", err)
		}
	}()

	return func() { close(done) }
}

// toProgressSnapshot converts either engine variant's identically-shaped
// Snapshot type into progress.Snapshot via field-by-field assignment. Any
// other type yields a zero progress.Snapshot.
func toProgressSnapshot(s any) progress.Snapshot {
	switch v := s.(type) {
	case factoreduct.Snapshot:
		return progress.Snapshot{NumNodes: v.NumNodes, CumulativeCost: v.CumulativeCost, LastChoice: v.LastChoice, Outcome: v.Outcome}
	case unfactoreduct.Snapshot:
		return progress.Snapshot{NumNodes: v.NumNodes, CumulativeCost: v.CumulativeCost, LastChoice: v.LastChoice, Outcome: v.Outcome}
	default:
		return progress.Snapshot{}
	}
}

func row(domainName, problemInstance, variantName, result string, cost, numNodes int, cfg phgnuct.Config) []string {
	seedStr := ""
	if cfg.Seed != nil {
		seedStr = strconv.FormatInt(*cfg.Seed, 10)
	}
	return []string{
		domainName, problemInstance, variantName, result,
		strconv.Itoa(cost), strconv.Itoa(numNodes),
		strconv.Itoa(cfg.NRollouts), strconv.Itoa(cfg.Horizon), strconv.Itoa(cfg.Budget),
		strconv.FormatFloat(cfg.ExplorationConst, 'f', -1, 64),
		strconv.FormatBool(cfg.NormalizeExplorationConst),
		strconv.Itoa(cfg.NInit),
		strconv.FormatFloat(cfg.RiskFactor, 'f', -1, 64),
		strconv.FormatFloat(cfg.GoalUtility, 'f', -1, 64),
		seedStr,
	}
}

// appendRow writes header iff the file doesn't exist or is empty, then
// appends row, matching run_uct.py's csv.DictWriter usage.
func appendRow(path string, row []string) error {
	info, statErr := os.Stat(path)
	writeHeader := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	return w.Write(row)
}

// runCompare runs both variants across n independently-seeded trials
// concurrently via errgroup (each trial owns its own Engine/NodeFactory, so
// no shared mutable state crosses goroutines) and reports a Welch t-test
// comparing their cumulative costs. Every trial's cost is included, whatever
// its outcome; an error from any trial aborts the comparison.
func runCompare(n int) error {
	factoredCosts := make([]float64, n)
	unfactoredCosts := make([]float64, n)

	group, _ := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		i := i
		group.Go(func() error {
			s := int64(i)
			cfg := buildConfig()
			cfg.Seed = &s

			fr, err := execute(cfg, *domain, "factored")
			if err != nil {
				return err
			}
			ur, err := execute(cfg, *domain, "unfactored")
			if err != nil {
				return err
			}
			factoredCosts[i] = float64(fr.CumulativeCost)
			unfactoredCosts[i] = float64(ur.CumulativeCost)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	m1, s1 := meanStdev(factoredCosts)
	m2, s2 := meanStdev(unfactoredCosts)
	tStat, df, p := stats.WelchTTest(m1, m2, s1, s2, n, n)

	fmt.Printf("factored:   mean cost=%.3f stdev=%.3f\n", m1, s1)
	fmt.Printf("unfactored: mean cost=%.3f stdev=%.3f\n", m2, s2)
	fmt.Printf("welch t-test: t=%.4f df=%.2f p=%.4f\n", tStat, df, p)
	return nil
}

func meanStdev(xs []float64) (mean, stdev float64) {
	n := float64(len(xs))
	for _, x := range xs {
		mean += x
	}
	mean /= n
	for _, x := range xs {
		stdev += (x - mean) * (x - mean)
	}
	if n > 1 {
		stdev = math.Sqrt(stdev / (n - 1))
	}
	return
}
