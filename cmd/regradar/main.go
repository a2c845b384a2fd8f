package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kingabzpro/RegRadar/cmd/regradar/chat"
	"github.com/kingabzpro/RegRadar/internal/agent"
	"github.com/kingabzpro/RegRadar/internal/catalog"
	"github.com/kingabzpro/RegRadar/internal/config"
	"github.com/kingabzpro/RegRadar/internal/llm"
	"github.com/kingabzpro/RegRadar/internal/logging"
	"github.com/kingabzpro/RegRadar/internal/memory"
	"github.com/kingabzpro/RegRadar/internal/webtools"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	timeout    time.Duration

	// Loaded at PersistentPreRunE
	cfg *config.Config

	// Logger for non-interactive commands
	logger *zap.Logger
)

// rootCmd launches the interactive chat when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "regradar",
	Short: "RegRadar - AI regulatory compliance assistant",
	Long: `RegRadar monitors regulatory agencies (SEC, FDA, ESMA and others),
crawls their latest announcements, and compiles tiered compliance
reports with per-user memory of past queries.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		if err := logging.Initialize(config.AppDir(), logging.Settings{
			DebugMode:  cfg.Logging.DebugMode,
			Level:      cfg.Logging.Level,
			Categories: cfg.Logging.Categories,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
		}
		logging.Boot("RegRadar %s starting, config=%s", cfg.Version, configPath)

		// The chat TUI owns the terminal; zap is for one-shot commands.
		if cmd.Name() == "regradar" {
			return nil
		}
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

// askCmd answers one question and exits, streaming to stdout.
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question and print the streamed report",
	Long: `Runs a single query through the full pipeline and streams the
report to stdout. Useful for scripting and piping.

Example:
  regradar ask "What are the latest SEC regulations for fintech?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

// sourcesCmd prints the monitored source catalog.
var sourcesCmd = &cobra.Command{
	Use:   "sources [region]",
	Short: "List the monitored regulatory sources",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSources,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", filepath.Join(config.AppDir(), "config.yaml"), "Config file path")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout for one-shot commands")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildAgent wires the pipeline from config: Tavily when a key is
// present, otherwise the keyless fallback provider; Mem0 when a key is
// present, otherwise the local SQLite store. The returned cleanup
// closes the memory store.
func buildAgent() (*agent.Agent, func(), error) {
	client := llm.NewOpenAIClient(cfg.LLM)

	var crawler webtools.Crawler
	var searcher webtools.Searcher
	tavily := webtools.NewTavilyClient(cfg.WebTools)
	if tavily.Configured() {
		crawler, searcher = tavily, tavily
		logging.Boot("web tools: tavily")
	} else {
		fallback := webtools.NewFallbackClient(nil)
		crawler, searcher = fallback, fallback
		logging.BootWarn("web tools: no TAVILY_API_KEY, using keyless fallback provider")
	}

	var store memory.Store
	mem0 := memory.NewMem0Store(cfg.Memory)
	if mem0.Configured() {
		store = mem0
		logging.Boot("memory: mem0")
	} else {
		dbPath := cfg.Memory.DatabasePath
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(config.AppDir(), dbPath)
		}
		local, err := memory.NewLocalStore(dbPath)
		if err != nil {
			logging.MemoryWarn("local store unavailable, memory disabled: %v", err)
			store = nil
		} else {
			store = local
			logging.Boot("memory: local sqlite at %s", dbPath)
		}
	}

	opts := agent.RetrievalOptions{
		MaxDepth:     cfg.WebTools.MaxDepth,
		CrawlLimit:   cfg.WebTools.CrawlLimit,
		SearchLimit:  cfg.WebTools.SearchLimit,
		ExcerptLimit: cfg.WebTools.ExcerptLimit,
	}

	a := agent.NewAgent(client, crawler, searcher, store, opts)
	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
	}
	return a, cleanup, nil
}

func runChat() error {
	a, cleanup, err := buildAgent()
	if err != nil {
		return err
	}
	defer cleanup()

	// Hot-reload the logging section while the chat runs.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if watcher, err := config.NewWatcher(configPath); err == nil {
		if err := watcher.Start(ctx); err == nil {
			defer watcher.Stop()
		}
	}

	return chat.Run(a, cfg)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, cleanup, err := buildAgent()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	question := joinArgs(args)
	userID := "cli"
	logger.Info("Processing question", zap.String("question", question))

	for ev := range a.RunTurn(ctx, question, userID) {
		switch {
		case ev.Fragment != nil:
			if ev.Fragment.Err {
				fmt.Fprintln(os.Stderr, ev.Fragment.Text)
				continue
			}
			fmt.Print(ev.Fragment.Text)
		case ev.Done:
			fmt.Println()
			logger.Info("Turn complete", zap.Duration("elapsed", ev.Elapsed))
		case ev.Status != "":
			logger.Debug("Pipeline status",
				zap.String("state", ev.State.String()),
				zap.String("status", ev.Status))
		}
	}
	return ctx.Err()
}

func runSources(cmd *cobra.Command, args []string) error {
	regions := catalog.Regions()
	if len(args) == 1 {
		if !catalog.HasRegion(args[0]) {
			return fmt.Errorf("unknown region %q (known: %v)", args[0], regions)
		}
		regions = args[:1]
	}

	for _, region := range regions {
		fmt.Printf("%s:\n", region)
		for _, src := range catalog.Sources(region) {
			fmt.Printf("  %-28s %s\n", catalog.FullName(src.Name), src.URL)
		}
		fmt.Println()
	}
	return nil
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}
