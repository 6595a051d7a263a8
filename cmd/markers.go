package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var markersCmd = &cobra.Command{
	Use:   "markers [recording-file] [marker-file]",
	Short: "Import a marker file against a recording",
	Long: `Load a recording, import markers from a CSV (latency,duration,type
columns) or JSON marker file, and report which rows were accepted. Rows
outside the recording are clipped or skipped. With --export the accepted
markers are re-exported as CSV and recorded in the export log.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doExport, _ := cmd.Flags().GetBool("export")
		svc := newService()

		if _, err := svc.LoadRecording(args[0]); err != nil {
			return err
		}

		report, err := svc.ImportMarkerFile(args[1])
		if err != nil {
			return err
		}

		fmt.Printf("accepted: %d\n", report.Accepted)
		if len(report.Rejected) > 0 {
			fmt.Printf("rejected: %d\n", len(report.Rejected))
			for _, row := range report.Rejected {
				fmt.Printf("  row %d: %s\n", row.Index, row.Reason)
			}
		}

		for _, m := range svc.Markers() {
			fmt.Printf("%8.3fs +%6.3fs  %s\n", m.Onset, m.Duration, m.Label)
		}

		if doExport {
			entry, err := svc.ExportMarkers()
			if err != nil {
				return err
			}
			fmt.Printf("exported: %s (%s)\n", entry.Path, entry.ID)
		}
		return nil
	},
}

func init() {
	markersCmd.Flags().Bool("export", false, "export the accepted markers as CSV")
}
