// Package main provides the greener-reporter CLI application.
package main

import (
	"fmt"

	"github.com/greener-hub/greener-reporter/pkg/servermock"
	"github.com/spf13/cobra"
)

// fixturesCmd represents the fixtures command
var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "Inspect the embedded servermock fixtures",
}

var fixturesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List fixture names",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range servermock.FixtureNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

var fixturesCallsCmd = &cobra.Command{
	Use:   "calls NAME",
	Short: "Print the expected calls of a fixture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := servermock.FixtureCalls(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

var fixturesResponsesCmd = &cobra.Command{
	Use:   "responses NAME",
	Short: "Print the canned responses of a fixture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := servermock.FixtureResponses(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fixturesCmd)
	fixturesCmd.AddCommand(fixturesListCmd, fixturesCallsCmd, fixturesResponsesCmd)
}
