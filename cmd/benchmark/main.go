package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fenwick-labs/goliquid/pkg/liquid"
)

// BenchmarkCase is one named template+model pairing to measure, loaded
// from a JSON cases file. This harness tracks this engine's own render
// cost across template shapes rather than comparing against another
// engine.
type BenchmarkCase struct {
	Name     string                 `json:"name"`
	Template string                 `json:"template"`
	Model    map[string]interface{} `json:"model"`
}

type BenchmarkResult struct {
	Name            string  `json:"name"`
	ExecutionTimeMs float64 `json:"execution_time_ms"`
}

func main() {
	iterations := flag.Int("iterations", 1000, "number of iterations for each benchmark case")
	outputFile := flag.String("output", "benchmark_results.json", "output file for benchmark results")
	casesFile := flag.String("cases", "cmd/benchmark/cases.json", "JSON file containing benchmark cases")
	flag.Parse()

	cases, err := loadBenchmarkCases(*casesFile)
	if err != nil {
		fmt.Printf("Error loading benchmark cases: %v\n", err)
		os.Exit(1)
	}

	results := make([]BenchmarkResult, 0, len(cases))
	ctx := context.Background()
	opts := &liquid.Options{}

	for _, bc := range cases {
		fmt.Printf("Running benchmark: %s\n", bc.Name)
		start := time.Now()

		tmpl, err := liquid.Parse(bc.Template)
		if err != nil {
			fmt.Printf("Error parsing template for benchmark %s: %v\n", bc.Name, err)
			continue
		}

		for i := 0; i < *iterations; i++ {
			if _, err := tmpl.Render(ctx, opts, liquid.RenderRequest{Model: bc.Model}); err != nil {
				fmt.Printf("Error in benchmark %s: %v\n", bc.Name, err)
				break
			}
		}

		elapsed := time.Since(start)
		avgMs := float64(elapsed.Microseconds()) / float64(*iterations) / 1000.0

		results = append(results, BenchmarkResult{Name: bc.Name, ExecutionTimeMs: avgMs})
		fmt.Printf("  Average time: %.6f ms\n", avgMs)
	}

	jsonData, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling results: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outputFile, jsonData, 0644); err != nil {
		fmt.Printf("Error writing results to file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Benchmark results written to %s\n", *outputFile)
}

func loadBenchmarkCases(filename string) ([]BenchmarkCase, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read cases file: %w", err)
	}
	var cases []BenchmarkCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse cases JSON: %w", err)
	}
	return cases, nil
}
