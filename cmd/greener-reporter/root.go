// Package main provides the greener-reporter CLI application.
package main

import (
	"context"

	"github.com/greener-hub/greener-reporter/pkg/config"
	"github.com/greener-hub/greener-reporter/pkg/observability"
	"github.com/greener-hub/greener-reporter/pkg/version"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "greener-reporter",
	Short: "Report test sessions and results to greener",
	Long: `greener-reporter - report test sessions and testcase results to a
greener ingestion service.

Testcases are batched and delivered in the background; delivery failures
are printed once every pending batch has been sent.`,
	Version:      version.FullString(),
	SilenceUsage: true,
}

// globalFlags holds the persistent flags shared by every command
type globalFlags struct {
	config   string
	endpoint string
	apiKey   string
	logLevel string
}

var globalOpts globalFlags

// Execute adds all child commands to the root command and runs it with ctx.
// This is called by main.main().
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalOpts.config, "config", "c", "", "Path to configuration file (default ./"+config.ProjectConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&globalOpts.endpoint, "endpoint", "", "Ingestion service base URL (overrides "+config.EnvEndpoint+")")
	rootCmd.PersistentFlags().StringVar(&globalOpts.apiKey, "api-key", "", "Ingestion API key (overrides "+config.EnvAPIKey+")")
	rootCmd.PersistentFlags().StringVar(&globalOpts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig loads defaults, the config file and the environment, then
// applies the persistent flags on top.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()
	if globalOpts.config != "" {
		loader = loader.WithPath(globalOpts.config)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	if globalOpts.endpoint != "" {
		cfg.Ingress.Endpoint = globalOpts.endpoint
	}
	if globalOpts.apiKey != "" {
		cfg.Ingress.APIKey = globalOpts.apiKey
	}
	if globalOpts.logLevel != "" {
		cfg.Log.Level = globalOpts.logLevel
	}
	return cfg, nil
}

// setup loads the configuration and builds the logger for commands that
// talk to the ingestion service.
func setup() (*config.Config, observability.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	log, err := observability.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
