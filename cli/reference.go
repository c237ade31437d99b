package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pixelverify/config"
	"github.com/sarchlab/pixelverify/frame"
)

// ReferenceOutput is the JSON form of the reference command.
type ReferenceOutput struct {
	Scenario  string  `json:"scenario"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Stimulus  [][]int `json:"stimulus"`
	Reference []int   `json:"reference"`
}

// NewReferenceCommand creates the reference command.
func NewReferenceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reference <scenario.yaml>",
		Short: "Print the stimulus and golden output of a scenario",
		Long: `Generate the stimulus frames of a scenario and compute the output the
pipeline is expected to produce, without running a testbench.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printReference(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func printReference(opts *RootOptions, path string, cmd *cobra.Command) error {
	s, err := config.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, path, err)
	}

	frames, err := s.Frames()
	if err != nil {
		return WrapExitError(ExitCommandError, "stimulus", err)
	}

	reference, err := s.Reference(frames)
	if err != nil {
		return WrapExitError(ExitCommandError, "reference", err)
	}

	out := cmd.OutOrStdout()
	w, h := s.Pipeline.Width, s.Pipeline.Height

	if opts.Format == "json" {
		ro := ReferenceOutput{
			Scenario:  s.Name,
			Width:     w,
			Height:    h,
			Reference: reference,
		}
		for _, f := range frames {
			ro.Stimulus = append(ro.Stimulus, f.Flat())
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(ro)
	}

	size := w * h
	for i, f := range frames {
		expected := frame.MustNew(w, h)
		for j, v := range reference[i*size : (i+1)*size] {
			expected.Pix[j] = uint16(v)
		}

		fmt.Fprintf(out, "Stimulus %d: %s\n", i, f)
		fmt.Fprintf(out, "Reference %d: %s\n", i, expected)
	}

	return nil
}
