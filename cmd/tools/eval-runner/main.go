// cmd/tools/eval-runner/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"coldcall-backend/internal/common/config"
	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/engine"
	"coldcall-backend/internal/evals"
)

func main() {
	configPath := flag.String("config", "", "Optional config file; defaults to built-in engine tunables")
	jsonOut := flag.Bool("json", false, "Emit results as JSON instead of text")
	flag.Parse()

	zapLog := logger.New("warn", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	engCfg := engine.DefaultConfig()
	if *configPath != "" {
		cfg, err := config.LoadFromFile(*configPath)
		if err != nil {
			zapLog.Fatal("config load failed", zap.Error(err))
		}
		engCfg = cfg.Engine.ToEngineConfig()
	}

	eng, err := engine.New(engCfg)
	if err != nil {
		zapLog.Fatal("engine configuration invalid", zap.Error(err))
	}

	runner := evals.NewRunner(eng, log)
	results := runner.RunAll(context.Background(), evals.Scenarios())

	failed := 0
	for _, res := range results {
		if !res.Passed {
			failed++
		}
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			zapLog.Fatal("failed to encode results", zap.Error(err))
		}
	} else {
		for _, res := range results {
			status := "PASS"
			if !res.Passed {
				status = "FAIL"
			}
			fmt.Printf("%-4s %-20s score=%.1f label=%-6s turns=%d\n",
				status, res.Name, res.Score, res.Label, res.Turns)
			for _, f := range res.Failures {
				fmt.Printf("       - %s\n", f)
			}
		}
		fmt.Printf("\n%d/%d scenarios passed\n", len(results)-failed, len(results))
	}

	if failed > 0 {
		os.Exit(1)
	}
}
