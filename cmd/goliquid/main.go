package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fenwick-labs/goliquid/pkg/liquid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// config is the optional YAML settings file for the CLI (SPEC_FULL §9).
type config struct {
	Culture       string `yaml:"culture,omitempty"`
	MemberAccess  string `yaml:"member_access,omitempty"`
	MaxRecursion  int    `yaml:"max_recursion,omitempty"`
	MaxSteps      int    `yaml:"max_steps,omitempty"`
	MaxIterations int    `yaml:"max_iterations,omitempty"`
}

func (c *config) load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decoding config file: %w", err)
	}
	return nil
}

func (c *config) toOptions() *liquid.Options {
	opts := &liquid.Options{Culture: c.Culture, MaxRecursion: c.MaxRecursion, MaxSteps: c.MaxSteps, MaxIterations: c.MaxIterations}
	if c.MemberAccess == "unsafe" {
		opts.MemberAccessStrategy = liquid.MemberAccessUnsafe
	}
	return opts
}

var (
	cfgFile    string
	modelFile  string
	verbose    bool
	configData config
)

var rootCmd = cobra.Command{
	Use:   "goliquid",
	Short: "Render Liquid templates from the command line",
}

var renderCmd = cobra.Command{
	Use:   "render [template]",
	Short: "Render a template file against a JSON or YAML model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logLevel := slog.LevelInfo
		if verbose {
			logLevel = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

		if err := configData.load(cfgFile); err != nil {
			return err
		}
		opts := configData.toOptions()
		opts.Logger = logger

		src, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading template: %w", err)
		}

		model, err := loadModel(modelFile)
		if err != nil {
			return fmt.Errorf("loading model: %w", err)
		}

		loaderDir := filepath.Dir(args[0])
		opts.Loader = newDirLoader(loaderDir)

		tmpl, err := liquid.Parse(string(src))
		if err != nil {
			return fmt.Errorf("parsing template: %w", err)
		}

		out, err := tmpl.Render(context.Background(), opts, liquid.RenderRequest{Model: model})
		if err != nil {
			return fmt.Errorf("rendering template: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func loadModel(path string) (map[string]interface{}, error) {
	if path == "" {
		return map[string]interface{}{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	model := map[string]interface{}{}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &model); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &model); err != nil {
			return nil, err
		}
	}
	return model, nil
}

// dirLoader resolves {% include %}/{% render %} partials against sibling
// files on disk next to the top-level template, keeping the core
// liquid.TemplateLoader contract file-system-agnostic (§1) while giving
// the CLI a concrete, minimal implementation.
type dirLoader struct{ dir string }

func newDirLoader(dir string) *dirLoader { return &dirLoader{dir: dir} }

func (l *dirLoader) Resolve(name string, _ liquid.TemplateKind) (string, error) {
	path := filepath.Join(l.dir, name)
	if _, err := os.Stat(path); err != nil {
		pathLiquid := path + ".liquid"
		if _, err := os.Stat(pathLiquid); err != nil {
			return "", fmt.Errorf("template %q not found under %q", name, l.dir)
		}
		return pathLiquid, nil
	}
	return path, nil
}

func (l *dirLoader) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func main() {
	renderCmd.Flags().StringVar(&modelFile, "model", "", "JSON or YAML file supplying the render model")
	renderCmd.Flags().StringVar(&cfgFile, "config", "", "YAML file with engine options (culture, guards, member access)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(&renderCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
