// Package main provides the rollstat binary: it evaluates a dice
// expression or a Lua scenario script into an exact probability
// distribution and prints it.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/rollstat/rollstat/internal/config"
	"github.com/rollstat/rollstat/internal/dice"
	"github.com/rollstat/rollstat/internal/observability"
	"github.com/rollstat/rollstat/internal/roll"
	"github.com/rollstat/rollstat/internal/scripting"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty = built-in defaults")
	diceDir := flag.String("dice-dir", "", "directory of custom die YAML definitions; overrides config")
	expr := flag.String("expr", "", "dice expression to evaluate, e.g. \"2d6+3\" or \"4d6kh3\"")
	script := flag.String("script", "", "path to a Lua scenario script that returns a roll")
	simulate := flag.Int("simulate", 0, "draw N samples from the distribution instead of printing it")
	seed := flag.Int64("seed", 0, "deterministic sample seed; 0 = crypto randomness")
	flag.Parse()

	if (*expr == "") == (*script == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -expr or -script is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}
	if *diceDir != "" {
		cfg.Content.DiceDir = *diceDir
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	customDice := map[string]roll.Roll{}
	if cfg.Content.DiceDir != "" {
		start := time.Now()
		customDice, err = dice.LoadDir(cfg.Content.DiceDir)
		if err != nil {
			logger.Fatal("loading custom dice", zap.Error(err))
		}
		logger.Info("custom dice loaded",
			zap.Int("count", len(customDice)),
			zap.String("dir", cfg.Content.DiceDir),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	evaluator := roll.NewEvaluator(cfg.Evaluation.MaxOutcomes, logger)

	dist, err := evaluate(cfg, evaluator, customDice, *expr, *script)
	if err != nil {
		logger.Fatal("evaluating roll", zap.Error(err))
	}

	if *simulate > 0 {
		src := sampleSource(*seed)
		for i := 0; i < *simulate; i++ {
			o, err := roll.Sample(dist, src)
			if err != nil {
				logger.Fatal("sampling", zap.Error(err))
			}
			fmt.Printf("%d\t%s\n", o.Value, o.Tags)
		}
		return
	}

	printDistribution(dist)
}

// evaluate builds the roll from the expression or script and computes its
// distribution. Scripted rolls may carry Lua callbacks, so the scenario
// stays open until the distribution is computed.
func evaluate(cfg config.Config, evaluator *roll.Evaluator, customDice map[string]roll.Roll, expr, script string) (roll.Distribution, error) {
	if expr != "" {
		r, err := dice.Parse(expr)
		if err != nil {
			return nil, err
		}
		return evaluator.Distribution(r)
	}

	engine := scripting.NewEngine(evaluator, customDice, cfg.Scripting.InstructionLimit, nil)
	if cfg.Evaluation.Division == "floor" {
		engine.UseFloorDivision()
	}
	scenario, err := engine.LoadFile(script)
	if err != nil {
		return nil, err
	}
	defer scenario.Close()
	return scenario.Distribution()
}

func sampleSource(seed int64) roll.Source {
	if seed != 0 {
		return roll.NewSeededSource(seed)
	}
	return roll.NewCryptoSource()
}

// printDistribution writes a value-sorted table with cumulative
// probabilities to stdout.
func printDistribution(dist roll.Distribution) {
	sorted := make(roll.Distribution, len(dist))
	copy(sorted, dist)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value < sorted[j].Value })

	fmt.Printf("%8s  %12s  %12s  %s\n", "value", "probability", "cumulative", "tags")
	cumulative := 0.0
	for _, o := range sorted {
		cumulative += o.Probability
		fmt.Printf("%8d  %12.6f  %12.6f  %s\n", o.Value, o.Probability, cumulative, o.Tags)
	}
}
