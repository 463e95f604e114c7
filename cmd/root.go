package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/sage/internal/config"
	"github.com/agentic-research/sage/internal/ingest"
	"github.com/agentic-research/sage/internal/knowledge"
	"github.com/agentic-research/sage/internal/source"
)

var (
	configPath string
	typeKey    string
	maxDepth   int
	stableIDs  bool
	logLevel   string
	skipKeys   []string
)

var rootCmd = &cobra.Command{
	Use:           "sage",
	Short:         "sage: typed property graphs from JSON-LD and YAML documents",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./sage.yaml if present)")
	pf.StringVar(&typeKey, "type-key", ingest.DefaultTypeKey, "Reserved key holding a scope's type")
	pf.IntVar(&maxDepth, "max-depth", ingest.DefaultMaxDepth, "Deepest allowed nesting, root is 1")
	pf.BoolVar(&stableIDs, "stable-ids", false, "Number scopes s1, s2, ... instead of UUIDs")
	pf.StringVar(&logLevel, "log-level", "warn", "debug|info|warn|error")
	pf.StringSliceVar(&skipKeys, "skip", nil, "Keys to drop during ingestion (e.g. @context)")
}

// resolveConfig layers explicitly set flags over the config file.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("type-key") {
		cfg.Ingest.TypeKey = typeKey
	}
	if flags.Changed("max-depth") {
		cfg.Ingest.MaxDepth = maxDepth
	}
	if flags.Changed("stable-ids") {
		cfg.Ingest.StableIDs = stableIDs
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("skip") {
		cfg.Ingest.SkipKeys = skipKeys
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level, _ := config.ParseLevel(cfg.Log.Level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadGraph builds a knowledge graph from the command's configuration and
// loads path into it.
func loadGraph(cmd *cobra.Command, path string) (*knowledge.Graph, *slog.Logger, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg)
	g := knowledge.New(
		knowledge.WithSource(source.NewOS()),
		knowledge.WithEngine(ingest.NewEngine(cfg.EngineConfig(), ingest.WithLogger(logger))),
		knowledge.WithLogger(logger),
	)
	if err := g.LoadPath(path); err != nil {
		return nil, nil, err
	}
	return g, logger, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
