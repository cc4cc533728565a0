package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/fenwick-labs/goliquid/pkg/liquid"
)

var (
	cpuprofile   = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile   = flag.String("memprofile", "", "write memory profile to file")
	blockprofile = flag.String("blockprofile", "", "write goroutine blocking profile to file")
	templateFile = flag.String("template", "", "template file to render")
	modelFile    = flag.String("model", "", "JSON file with model data")
	iterations   = flag.Int("iterations", 1000, "number of iterations to run")
	template     = flag.String("template-string", "", "template string to render (alternative to template file)")
	outputDir    = flag.String("output-dir", "profile", "directory to store profile output")
)

func main() {
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	var templateContent string
	if *templateFile != "" {
		content, err := os.ReadFile(*templateFile)
		if err != nil {
			log.Fatalf("Failed to read template file: %v", err)
		}
		templateContent = string(content)
	} else if *template != "" {
		templateContent = *template
	} else {
		log.Fatal("Either --template or --template-string must be provided")
	}

	var model map[string]interface{}
	if *modelFile != "" {
		content, err := os.ReadFile(*modelFile)
		if err != nil {
			log.Fatalf("Failed to read model file: %v", err)
		}
		if err := json.Unmarshal(content, &model); err != nil {
			log.Fatalf("Failed to parse model JSON: %v", err)
		}
	} else {
		model = make(map[string]interface{})
	}

	tmpl, err := liquid.Parse(templateContent)
	if err != nil {
		log.Fatalf("Failed to parse template: %v", err)
	}
	opts := &liquid.Options{}

	if *cpuprofile != "" {
		cpuFile := filepath.Join(*outputDir, *cpuprofile)
		f, err := os.Create(cpuFile)
		if err != nil {
			log.Fatalf("Failed to create CPU profile file: %v", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("Failed to start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
		fmt.Printf("CPU profiling enabled, writing to %s\n", cpuFile)
	}

	fmt.Printf("Rendering template %d times\n", *iterations)
	start := time.Now()

	ctx := context.Background()
	for i := 0; i < *iterations; i++ {
		result, err := tmpl.Render(ctx, opts, liquid.RenderRequest{Model: model})
		if err != nil {
			log.Fatalf("Failed to render template: %v", err)
		}
		if i == *iterations-1 {
			fmt.Printf("Result length: %d\n", len(result))
		}
	}

	duration := time.Since(start)
	fmt.Printf("Time taken: %v\n", duration)
	fmt.Printf("Average time per iteration: %v\n", duration/time.Duration(*iterations))

	if *memprofile != "" {
		memFile := filepath.Join(*outputDir, *memprofile)
		f, err := os.Create(memFile)
		if err != nil {
			log.Fatalf("Failed to create memory profile file: %v", err)
		}
		defer f.Close()

		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatalf("Failed to write memory profile: %v", err)
		}
		fmt.Printf("Memory profile written to %s\n", memFile)
	}

	if *blockprofile != "" {
		blockFile := filepath.Join(*outputDir, *blockprofile)
		f, err := os.Create(blockFile)
		if err != nil {
			log.Fatalf("Failed to create block profile file: %v", err)
		}
		defer f.Close()

		if err := pprof.Lookup("block").WriteTo(f, 0); err != nil {
			log.Fatalf("Failed to write block profile: %v", err)
		}
		fmt.Printf("Block profile written to %s\n", blockFile)
	}
}
