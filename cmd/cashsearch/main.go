package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/cashsearch/internal/cli"
	"github.com/Veraticus/cashsearch/internal/common"
	"github.com/Veraticus/cashsearch/internal/config"
)

var version = "dev"

// app carries state shared by every command once the configuration is loaded.
type app struct {
	v         *viper.Viper
	logCloser io.Closer
	cfgFile   string
	cfg       config.Config
	demo      demoOptions
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "cashsearch",
		Short: "Search payments, deposits and loans from the terminal",
		Long: `cashsearch: an interactive search client for a cash-management index.

Type to get autocomplete suggestions (with spelling corrections when nothing
matches), press Enter to search and page through ranked results.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.initConfig,
		PersistentPostRunE: a.shutdown,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd, args)
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/cashsearch/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.String("base-url", "", "search API base URL (default http://localhost:8080/api)")
	flags.BoolVar(&a.demo.enabled, "demo", false, "search an in-process sample index instead of the API")
	flags.IntVar(&a.demo.records, "demo-records", 500, "number of sample records in demo mode")
	flags.Uint64Var(&a.demo.seed, "demo-seed", 42, "random seed for the demo sample")

	// Bind flags to viper
	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("logging.file", flags.Lookup("log-file"))
	_ = a.v.BindPFlag("backend.base_url", flags.Lookup("base-url"))

	addTUIFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(tuiCmd(a))
	rootCmd.AddCommand(searchCmd(a))
	rootCmd.AddCommand(suggestCmd(a))
	rootCmd.AddCommand(fuzzyCmd(a))
	rootCmd.AddCommand(historyCmd(a))
	rootCmd.AddCommand(serveCmd(a))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel() // Always cleanup

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(common.UserMessage(err, err.Error())))
		os.Exit(1)
	}
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	if err := config.ReadInto(a.v, a.cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	// The TUI owns the terminal, so its logs go to a file or nowhere.
	logFile := cfg.Logging.File
	if logFile == "" && isInteractive(cmd) {
		logFile = os.DevNull
	}

	level, err := common.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	closer, err := common.SetupLogger(level, cfg.Logging.Format, logFile)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	a.logCloser = closer

	slog.Debug("Configuration loaded",
		"config_file", a.v.ConfigFileUsed(),
		"base_url", cfg.Backend.BaseURL,
		"demo", a.demo.enabled)
	return nil
}

func (a *app) shutdown(_ *cobra.Command, _ []string) error {
	if a.logCloser != nil {
		return a.logCloser.Close()
	}
	return nil
}

func isInteractive(cmd *cobra.Command) bool {
	return cmd.Name() == "tui" || cmd.Name() == "cashsearch"
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "cashsearch %s\n", version)
			return err
		},
	}
}
