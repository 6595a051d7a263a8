package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [recording-file]",
	Short: "Load a recording and show its validated summary",
	Long:  `Load the given recording file, run it through validation and display the resulting session summary: channel catalog, sampling rate, duration and any validation warnings.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newService()

		warnings, err := svc.LoadRecording(args[0])
		if err != nil {
			return err
		}

		s := svc.Summary()
		fmt.Printf("=== RECORDING ===\n")
		fmt.Printf("label: %s\n", s.Label)
		fmt.Printf("channels: %d\n", s.NumChannels)
		fmt.Printf("sampling_rate: %g Hz\n", s.SampleRate)
		fmt.Printf("duration: %.1f s\n", s.DurationSec)
		fmt.Printf("window: %.2f - %.2f s\n", s.Window.Start, s.Window.End)

		fmt.Printf("\n=== CHANNEL CATALOG ===\n")
		fmt.Println(strings.Join(svc.Channels(), ", "))

		if len(warnings) > 0 {
			fmt.Printf("\n=== WARNINGS ===\n")
			for _, w := range warnings {
				fmt.Printf("- %s\n", w)
			}
		}
		return nil
	},
}
