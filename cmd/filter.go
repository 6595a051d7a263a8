package cmd

import (
	"fmt"

	"github.com/eegvizlab/eegviz/internal/filter"
	"github.com/spf13/cobra"
)

var filterCmd = &cobra.Command{
	Use:   "filter [recording-file]",
	Short: "Validate and apply filter parameters to a recording",
	Long: `Load a recording, validate the given filter parameters against it
(Nyquist limit, cutoff ordering) and commit them to the session. With no
flags the configured defaults are used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newService()

		if _, err := svc.LoadRecording(args[0]); err != nil {
			return err
		}

		p := svc.DefaultFilterParams()
		if cmd.Flags().Changed("high-pass") {
			v, _ := cmd.Flags().GetFloat64("high-pass")
			p.HighPass = filter.Float(v)
		}
		if cmd.Flags().Changed("low-pass") {
			v, _ := cmd.Flags().GetFloat64("low-pass")
			p.LowPass = filter.Float(v)
		}
		if cmd.Flags().Changed("notch") {
			v, _ := cmd.Flags().GetFloat64("notch")
			p.Notch = filter.Float(v)
		}
		if cmd.Flags().Changed("resample") {
			v, _ := cmd.Flags().GetFloat64("resample")
			p.Resample = filter.Float(v)
		}
		p.AverageRef, _ = cmd.Flags().GetBool("average-ref")

		if err := svc.ApplyFilters(p); err != nil {
			return err
		}

		fmt.Printf("pipeline: %s\n", p.String())
		fmt.Printf("filter_applied: %v\n", svc.Summary().FilterApplied)
		return nil
	},
}

func init() {
	filterCmd.Flags().Float64("high-pass", 0, "high-pass cutoff in Hz")
	filterCmd.Flags().Float64("low-pass", 0, "low-pass cutoff in Hz")
	filterCmd.Flags().Float64("notch", 0, "notch frequency in Hz (60 US, 50 Europe)")
	filterCmd.Flags().Float64("resample", 0, "resample frequency in Hz")
	filterCmd.Flags().Bool("average-ref", false, "re-reference to the channel average")
}
