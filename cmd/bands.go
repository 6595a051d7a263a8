package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var bandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "List the configured frequency bands",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, b := range cfg.Bands {
			fmt.Printf("%-8s %5.1f - %5.1f Hz\n", b.Name, b.Low, b.High)
		}
		return nil
	},
}
