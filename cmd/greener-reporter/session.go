// Package main provides the greener-reporter CLI application.
package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/greener-hub/greener-reporter/pkg/reporter"
	"github.com/spf13/cobra"
)

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Create a test session",
	Long: `Create a session on the ingestion service and print its id.

Session fields come from the session section of the config file and from
GREENER_SESSION_* variables; flags override both.`,
	Args: cobra.NoArgs,
	RunE: runSession,
}

// sessionFlags holds the flags for the session command
type sessionFlags struct {
	id          string
	description string
	baggage     string
	labels      string
	generateID  bool
}

var sessionOpts sessionFlags

func init() {
	rootCmd.AddCommand(sessionCmd)

	sessionCmd.Flags().StringVar(&sessionOpts.id, "id", "", "Session id (assigned by the service when absent)")
	sessionCmd.Flags().StringVar(&sessionOpts.description, "description", "", "Session description")
	sessionCmd.Flags().StringVar(&sessionOpts.baggage, "baggage", "", "Session baggage as JSON")
	sessionCmd.Flags().StringVar(&sessionOpts.labels, "labels", "", "Session labels")
	sessionCmd.Flags().BoolVar(&sessionOpts.generateID, "generate-id", false, "Generate a random session id on the client")
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	in := reporter.SessionInput{
		ID:          cfg.Session.ID,
		Description: cfg.Session.Description,
		Baggage:     cfg.Session.Baggage,
		Labels:      cfg.Session.Labels,
	}
	flags := cmd.Flags()
	if flags.Changed("id") {
		in.ID = reporter.String(sessionOpts.id)
	}
	if flags.Changed("description") {
		in.Description = reporter.String(sessionOpts.description)
	}
	if flags.Changed("baggage") {
		in.Baggage = reporter.String(sessionOpts.baggage)
	}
	if flags.Changed("labels") {
		in.Labels = reporter.String(sessionOpts.labels)
	}
	if sessionOpts.generateID {
		if in.ID != nil {
			return fmt.Errorf("--generate-id cannot be combined with a session id")
		}
		in.ID = reporter.String(uuid.NewString())
	}

	r, err := reporter.NewFromConfig(cfg, log)
	if err != nil {
		return err
	}
	defer r.Shutdown(cmd.Context())

	session, err := r.CreateSession(cmd.Context(), in)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), session.ID)
	return nil
}
