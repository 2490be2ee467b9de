// Package cmd implements the planviz command line.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mhpenta/planviz"
	"github.com/mhpenta/planviz/internal/config"
	"github.com/mhpenta/planviz/internal/logger"
	"github.com/mhpenta/planviz/provider/gemini"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	// cfg and appLog are set by the root PersistentPreRunE before any subcommand runs.
	cfg    *config.Config
	appLog *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "planviz",
		Short: "Render interior visualisations from a floor plan and a style reference",
		Long: "planviz turns a 2D floor plan and a reference photo into a photorealistic render " +
			"using Gemini models. It can also list and probe models for image generation support.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(viper.GetViper(), cfgFile)
			if err != nil {
				return err
			}
			cfg = loaded
			appLog = logger.Init(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}
)

// Execute runs the root command and exits non-zero on failure. SIGINT and
// SIGTERM cancel the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (YAML)")
	flags.String("api-key", "", "Gemini API key (default from GEMINI_API_KEY)")
	flags.String("text-model", "", "model for style extraction and plan analysis")
	flags.String("image-model", "", "model for the final render")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("safety-threshold", "", "safety threshold for every harm category, e.g. BLOCK_ONLY_HIGH")
	flags.Bool("thinking", false, "enable thinking mode for the text stages")

	bindFlag("gemini.api_key", "api-key")
	bindFlag("gemini.text_model", "text-model")
	bindFlag("gemini.image_model", "image-model")
	bindFlag("log.level", "log-level")
	bindFlag("log.format", "log-format")
	bindFlag("gemini.safety_threshold", "safety-threshold")
	bindFlag("gemini.thinking", "thinking")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func bindLocalFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// newManager validates the config and builds the Gemini-backed manager.
func newManager(ctx context.Context, opts ...planviz.ManagerOption) (*planviz.Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	threshold, err := planviz.ParseSafetyThreshold(cfg.Gemini.SafetyThreshold)
	if err != nil {
		return nil, err
	}

	client, err := gemini.New(ctx, &gemini.Config{
		APIKey:         cfg.Gemini.APIKey,
		Timeout:        cfg.Gemini.Timeout,
		SafetySettings: planviz.SafetySettingsAt(threshold),
	})
	if err != nil {
		return nil, err
	}

	opts = append([]planviz.ManagerOption{planviz.WithLogger(appLog)}, opts...)
	return planviz.NewManager(client, opts...), nil
}

func newPipeline(manager *planviz.Manager, metrics planviz.MetricsRecorder) *planviz.Pipeline {
	opts := []planviz.PipelineOption{
		planviz.WithTextModel(cfg.Gemini.TextModel),
		planviz.WithImageModel(cfg.Gemini.ImageModel),
		planviz.WithPipelineLogger(appLog),
		planviz.WithThinking(cfg.Gemini.Thinking),
	}
	if metrics != nil {
		opts = append(opts, planviz.WithPipelineMetrics(metrics))
	}
	return planviz.NewPipeline(manager, opts...)
}

func newProber(manager *planviz.Manager, metrics planviz.MetricsRecorder) *planviz.Prober {
	opts := []planviz.ProberOption{planviz.WithProberLogger(appLog)}
	if metrics != nil {
		opts = append(opts, planviz.WithProberMetrics(metrics))
	}
	return planviz.NewProber(manager, opts...)
}
