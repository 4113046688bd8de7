// Package main provides the greener-reporter CLI application.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/greener-hub/greener-reporter/pkg/config"
	"github.com/greener-hub/greener-reporter/pkg/observability"
	"github.com/greener-hub/greener-reporter/pkg/servermock"
	"github.com/spf13/cobra"
)

// servermockCmd represents the servermock command
var servermockCmd = &cobra.Command{
	Use:   "servermock",
	Short: "Serve a fixture as a mock ingestion service",
	Long: `Serve the canned responses of a fixture on a local port until
interrupted. The base URL is printed on the first line of output.`,
	Args: cobra.NoArgs,
	RunE: runServermock,
}

// servermockFlags holds the flags for the servermock command
type servermockFlags struct {
	fixture string
}

var servermockOpts servermockFlags

func init() {
	rootCmd.AddCommand(servermockCmd)

	servermockCmd.Flags().StringVar(&servermockOpts.fixture, "fixture", "", "Fixture to serve (see 'fixtures list')")
	servermockCmd.MarkFlagRequired("fixture")
}

func runServermock(cmd *cobra.Command, args []string) error {
	logCfg := config.DefaultLogConfig()
	if globalOpts.logLevel != "" {
		logCfg.Level = globalOpts.logLevel
	}
	log, err := observability.NewLogger(logCfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	responses, err := servermock.FixtureResponses(servermockOpts.fixture)
	if err != nil {
		return err
	}

	mock := servermock.New(servermock.WithLogger(log))
	if err := mock.Serve(responses); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), mock.URL())

	<-cmd.Context().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return mock.Shutdown(ctx)
}
