package cmd

import (
	"fmt"
	"log/slog"

	"github.com/eegvizlab/eegviz/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session API server",
	Long: `Start the eegviz HTTP server. The server holds one interactive session:
load a recording, adjust channels, filters, markers and the analysis
window through the JSON API, and trigger exports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Server.Port = port
		}

		srv := server.New(newService(), cfg)

		slog.Info("eegviz server starting", "port", cfg.Server.Port, "data_dir", cfg.DataDir)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "port for the API server (overrides config)")
}
