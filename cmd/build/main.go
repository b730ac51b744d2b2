package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/debemdeboas/linkpanel/internal/cache"
	"github.com/debemdeboas/linkpanel/internal/config"
	"github.com/debemdeboas/linkpanel/internal/i18n"
	"github.com/debemdeboas/linkpanel/internal/logger"
	"github.com/debemdeboas/linkpanel/internal/render"
	"github.com/debemdeboas/linkpanel/internal/site"
	"github.com/debemdeboas/linkpanel/internal/widget/links"
)

var (
	configPath string
	outputDir  string
	workers    int
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "linkpanel-build",
	Short:         "Render every configured page with its cached widgets",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return run(ctx, cmd)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default $"+config.EnvConfigPath+" or "+config.DefaultConfigPath+")")
	rootCmd.Flags().StringVarP(&outputDir, "out", "o", "", "Override build.output_dir")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Override build.workers")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Build failed: ")+err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cobra.Command) error {
	if configPath == "" {
		configPath = os.Getenv(config.EnvConfigPath)
	}
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	if cmd.Flags().Changed("out") {
		cfg.Build.OutputDir = outputDir
	}
	if cmd.Flags().Changed("workers") {
		cfg.Build.Workers = workers
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level)
	config.SetLogger(logger.Component(log, "config"))
	cache.SetLogger(logger.Component(log, "cache"))
	i18n.SetLogger(logger.Component(log, "i18n"))
	render.SetLogger(logger.Component(log, "render"))
	site.SetLogger(logger.Component(log, "site"))

	store, closer, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer closer.Close()

	bundle, err := i18n.Load(cfg.I18n.DefaultLocale, cfg.I18n.Dir)
	if err != nil {
		return fmt.Errorf(config.ErrLoadLocalesFmt, err)
	}

	reader := sdkmetric.NewManualReader()
	meters := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer meters.Shutdown(context.Background())

	widget := links.New(store, cfg.Widgets.Links.TagText,
		render.WithSingleFlight(cfg.Cache.SingleFlight),
		render.WithMeterProvider(meters),
	)

	builder, err := site.NewBuilder(cfg, bundle, widget, nil)
	if err != nil {
		return err
	}

	report, err := builder.Build(ctx, site.Pages(cfg))
	if err != nil {
		return err
	}

	counters, err := collectCounters(ctx, reader)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to collect cache counters")
	}

	fmt.Println(renderSummary(report, cfg, counters))
	return nil
}
