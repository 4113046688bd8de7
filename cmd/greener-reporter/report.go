// Package main provides the greener-reporter CLI application.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	ctxutil "github.com/greener-hub/greener-reporter/pkg/context"
	"github.com/greener-hub/greener-reporter/pkg/observability"
	"github.com/greener-hub/greener-reporter/pkg/reporter"
	"github.com/spf13/cobra"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report testcases read as JSON lines",
	Long: `Read testcases as JSON lines and report them in batches.

Each line is an object with the wire field names:

  {"sessionId":"s1","testcaseName":"TestLogin","status":"pass"}

Optional fields are testcaseClassname, testcaseFile, testsuite, output
and baggage. Lines that fail validation are printed and skipped. Delivery
failures are printed after every batch has been sent; the command fails
if there was any.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

// reportFlags holds the flags for the report command
type reportFlags struct {
	file            string
	sessionID       string
	shutdownTimeout time.Duration
}

var reportOpts reportFlags

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportOpts.file, "file", "f", "-", "JSON lines file to read (- for stdin)")
	reportCmd.Flags().StringVar(&reportOpts.sessionID, "session-id", "", "Session id for lines without sessionId (default from config)")
	reportCmd.Flags().DurationVar(&reportOpts.shutdownTimeout, "shutdown-timeout", 30*time.Second, "Maximum time to wait for pending batches after input ends")
}

// reportLine is one input line.
type reportLine struct {
	SessionID         string          `json:"sessionId"`
	TestcaseName      string          `json:"testcaseName"`
	TestcaseClassname *string         `json:"testcaseClassname"`
	TestcaseFile      *string         `json:"testcaseFile"`
	Testsuite         *string         `json:"testsuite"`
	Status            string          `json:"status"`
	Output            *string         `json:"output"`
	Baggage           json.RawMessage `json:"baggage"`
}

func (l reportLine) input(defaultSession string) reporter.TestcaseInput {
	in := reporter.TestcaseInput{
		SessionID: l.SessionID,
		Name:      l.TestcaseName,
		Classname: l.TestcaseClassname,
		File:      l.TestcaseFile,
		Testsuite: l.Testsuite,
		Status:    reporter.Status(l.Status),
		Output:    l.Output,
	}
	if in.SessionID == "" {
		in.SessionID = defaultSession
	}
	if len(l.Baggage) > 0 && string(l.Baggage) != "null" {
		in.Baggage = reporter.String(string(l.Baggage))
	}
	return in
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	src := cmd.InOrStdin()
	if reportOpts.file != "-" {
		f, err := os.Open(reportOpts.file)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", reportOpts.file, err)
		}
		defer f.Close()
		src = f
	}

	defaultSession := reportOpts.sessionID
	if defaultSession == "" && cfg.Session.ID != nil {
		defaultSession = *cfg.Session.ID
	}

	r, err := reporter.NewFromConfig(cfg, log)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	rejected, readErr := submitLines(cmd.Context(), r, src, defaultSession, stderr)

	// An interrupt stops reading; accepted batches are still drained until a
	// second signal or the timeout.
	drainCtx, cancel := ctxutil.WithSignalTimeout(context.Background(), reportOpts.shutdownTimeout, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := r.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("shutdown interrupted: %w", err)
	}

	failed := 0
	for err := r.PopError(); err != nil; err = r.PopError() {
		fmt.Fprintln(stderr, err)
		failed++
	}

	stats := r.Stats()
	log.Info("report finished",
		observability.Int("submitted", int(stats.Submitted)),
		observability.Int("sent", int(stats.TestcasesSent)),
		observability.Int("rejected", rejected),
		observability.Int("failed_batches", failed))

	if readErr != nil {
		return readErr
	}
	if rejected > 0 || failed > 0 {
		return fmt.Errorf("%d testcase(s) rejected, %d batch(es) failed", rejected, failed)
	}
	return nil
}

// submitLines feeds every non-blank line of src to r until ctx is done. It
// returns the number of lines rejected by validation.
func submitLines(ctx context.Context, r *reporter.Reporter, src io.Reader, defaultSession string, errOut io.Writer) (int, error) {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	rejected := 0
	lineNo := 0
	for ctx.Err() == nil && scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var line reportLine
		if err := json.Unmarshal([]byte(text), &line); err != nil {
			fmt.Fprintf(errOut, "line %d: invalid JSON: %v\n", lineNo, err)
			rejected++
			continue
		}
		if err := r.CreateTestcase(line.input(defaultSession)); err != nil {
			fmt.Fprintf(errOut, "line %d: %v\n", lineNo, err)
			rejected++
		}
	}
	if err := scanner.Err(); err != nil {
		return rejected, fmt.Errorf("failed to read testcases: %w", err)
	}
	return rejected, nil
}
