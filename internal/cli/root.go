package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/control"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/config"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/simulator"
)

var (
	cfgPath  string
	isDebug  bool
	simulate bool
)

var rootCmd = &cobra.Command{
	Use:   "terminald",
	Short: "Terminal health and recovery daemon",
	Long:  `terminald monitors an unattended payment terminal's reader and connectivity health and drives bounded, never-ending self-healing.`,
	Run:   runTerminal,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&simulate, "simulate", false, "run against the in-memory reader simulator")
}

func initLogger(cfg *config.AppConfig) {
	level := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	})))
	slog.Info("logger initialized", "level", level.String())
}

func runTerminal(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	initLogger(cfg)

	if err := config.Validate(cfg); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	if !simulate {
		// The reader SDK and transport bridge are provided by the host
		// process; this binary only runs standalone against the simulator.
		slog.Error("no device bridge in standalone mode, run with --simulate")
		os.Exit(1)
	}

	sim := simulator.New(cfg.Intents.LayoutKind())
	app, err := control.NewTerminal(cfg, control.Deps{
		Status:       sim,
		Gateway:      sim,
		Feed:         sim,
		IntentClient: sim,
	})
	if err != nil {
		slog.Error("failed to initialize terminal", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.Start(ctx); err != nil {
		slog.Error("failed to start terminal", "error", err)
		os.Exit(1)
	}

	sig := <-sigChan
	slog.Info("received signal, shutting down", "signal", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("terminal daemon stopped gracefully")
}
