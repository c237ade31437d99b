package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"

	"github.com/sarchlab/pixelverify/config"
	"github.com/sarchlab/pixelverify/verify"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Report string // report file; with several scenarios, reports are appended
	Trace  string // trace file, .cbor for CBOR; overrides trace.path
	Strict bool   // warnings fail the run
}

// RunSummary is the JSON form of one scenario outcome.
type RunSummary struct {
	Scenario string   `json:"scenario"`
	RunID    string   `json:"run_id"`
	Verdict  string   `json:"verdict"`
	State    string   `json:"state"`
	Failure  string   `json:"failure,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Offset   *int     `json:"offset,omitempty"`
	Lead     *int     `json:"lead,omitempty"`
	Beats    int      `json:"beats"`
	Expected int      `json:"expected_beats"`
	Cycles   uint64   `json:"cycles"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Run conformance scenarios",
		Long: `Run one or more scenario files and print a conformance report for each.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (missing or invalid scenario, etc.)

Examples:
  pixelverify run scenarios/gaussian.yaml
  pixelverify run scenarios/*.yaml --format json
  pixelverify run scenarios/linebuffer.yaml --trace lb.cbor --report lb.txt`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Report, "report", "", "write the text report to this file")
	cmd.Flags().StringVar(&opts.Trace, "trace", "", "write a signal trace to this file (.json or .cbor)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat warnings as failures")

	return cmd
}

func runScenarios(opts *RunOptions, paths []string, cmd *cobra.Command) error {
	scenarios := make([]*config.Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := config.Load(path)
		if err != nil {
			return WrapExitError(ExitCommandError, path, err)
		}
		scenarios = append(scenarios, s)
	}

	if opts.Trace != "" && len(scenarios) > 1 {
		return NewExitError(ExitCommandError, "--trace takes a single scenario")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		reportFile io.Writer
		summaries  []RunSummary
		failed     int
	)

	if opts.Report != "" {
		f, err := os.Create(opts.Report)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create report file", err)
		}
		defer f.Close()
		reportFile = f
	}

	for _, s := range scenarios {
		report, err := runScenario(ctx, opts, s)
		if err != nil {
			return err
		}

		if opts.Format == "json" {
			summaries = append(summaries, summarize(report))
		} else {
			report.WriteReport(cmd.OutOrStdout())
		}

		if reportFile != nil {
			report.WriteReport(reportFile)
		}

		if !report.Passed() || (opts.Strict && len(report.Warnings) > 0) {
			failed++
		}
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(summaries); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure,
			fmt.Sprintf("%d of %d scenario(s) failed", failed, len(scenarios)))
	}

	return nil
}

func runScenario(
	ctx context.Context,
	opts *RunOptions,
	s *config.Scenario,
) (*verify.Report, error) {
	tracePath := s.Trace.Path
	if opts.Trace != "" {
		tracePath = opts.Trace
	}

	tb, rec, err := s.Build(sim.NewSerialEngine(), tracePath != "")
	if err != nil {
		return nil, WrapExitError(ExitCommandError, s.Name, err)
	}

	slog.Info("Scenario", "Name", s.Name, "RunID", tb.Report().RunID)

	report, err := tb.Run(ctx)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, s.Name, err)
	}

	if rec != nil {
		if err := rec.Save(tracePath); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to write trace", err)
		}
	}

	return report, nil
}

func summarize(r *verify.Report) RunSummary {
	sum := RunSummary{
		Scenario: r.Scenario,
		RunID:    r.RunID,
		Verdict:  string(r.Verdict),
		State:    r.FinalState,
		Beats:    r.Drain.ObservedBeats,
		Expected: r.Drain.ExpectedBeats,
		Cycles:   r.Cycles,
	}

	if r.Failure != nil {
		sum.Failure = r.Failure.Error()
	}

	for _, w := range r.Warnings {
		sum.Warnings = append(sum.Warnings, w.String())
	}

	if a := r.Alignment; a != nil && a.Candidates > 0 {
		offset := a.Offset
		sum.Offset = &offset

		if a.Lead > 0 {
			lead := a.Lead
			sum.Lead = &lead
		}
	}

	return sum
}
