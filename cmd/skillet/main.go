package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillet-cli/skillet/pkg/logger"
	"github.com/skillet-cli/skillet/pkg/presenter"
)

func init() {
	viper.SetEnvPrefix("SKILLET")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./.skillet")
	viper.AddConfigPath("$HOME/.skillet")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.sampler_type", "always")
}

var (
	tracingShutdown func(context.Context) error
	commandSpan     trace.Span
)

// setupLogging configures the global logger from the resolved configuration:
// flags take precedence, then SKILLET_* environment variables, then config.yaml.
func setupLogging() error {
	return logger.Init(viper.GetString("log_level"), viper.GetString("log_format"))
}

// finishTracing ends the command span and flushes the tracer. It is called
// from PersistentPostRun on success and from main on error exits, so it must
// be safe to call twice.
func finishTracing(ctx context.Context) {
	if commandSpan != nil {
		commandSpan.End()
		commandSpan = nil
	}
	if tracingShutdown != nil {
		_ = tracingShutdown(ctx)
		tracingShutdown = nil
	}
}

var rootCmd = &cobra.Command{
	Use:   "skillet",
	Short: "Discover, validate, and manage AI assistant skills and plugins",
	Long: `Skillet manages repositories of AI assistant skills (SKILL.md bundles),
commands, and agents. It discovers bundles from repo-local and global
directories, maintains a searchable catalog, and runs bundled scripts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(); err != nil {
			return err
		}

		quiet, _ := cmd.Flags().GetBool("quiet")
		presenter.SetQuiet(quiet)

		shutdown, err := initTracing(cmd.Context())
		if err != nil {
			logger.L.WithError(err).Warn("failed to initialize tracing")
		} else {
			tracingShutdown = shutdown
		}

		commandSpan = startCommandSpan(cmd, args)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		finishTracing(cmd.Context())
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress informational output")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra skips PersistentPostRun when a command fails
		finishTracing(context.Background())

		var exitErr exitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
