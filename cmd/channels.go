package cmd

import (
	"fmt"

	"github.com/eegvizlab/eegviz/internal/recording"
	"github.com/spf13/cobra"
)

var channelsCmd = &cobra.Command{
	Use:   "channels [recording-file]",
	Short: "List the channel catalog of a recording",
	Long:  `List the channels of a recording, optionally with the normalized electrode names used to match standard montage labels.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		normalize, _ := cmd.Flags().GetBool("normalize")

		rec, err := recording.Load(args[0])
		if err != nil {
			return err
		}

		names := rec.Channels()
		normalized := recording.NormalizeChannels(names)
		for i, name := range names {
			if normalize && normalized[i] != name {
				fmt.Printf("%2d. %s  (normalized: %s)\n", i+1, name, normalized[i])
			} else {
				fmt.Printf("%2d. %s\n", i+1, name)
			}
		}
		return nil
	},
}

func init() {
	channelsCmd.Flags().Bool("normalize", false, "show normalized electrode names where they differ")
}
