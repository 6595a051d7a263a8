package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/eegvizlab/eegviz/internal/config"
	"github.com/eegvizlab/eegviz/internal/exportlog"
	"github.com/eegvizlab/eegviz/internal/service"

	"github.com/spf13/cobra"
)

var (
	cfg          *config.Config
	cfgFile      string
	dataDir      string
	verboseLevel int
)

var rootCmd = &cobra.Command{
	Use:   "eegviz",
	Short: "Interactive EEG recording exploration tool",
	Long: `eegviz loads EEG recordings, tracks an interactive analysis session
(channel selection, bad channels, filter parameters, markers, analysis
window) and exports derived artifacts.

Recording decoding and spectral estimation are pluggable; the built-in
loader reads pre-decoded JSON recordings and EDF/BDF decoders register
through the same loader registry.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(verboseLevel)

		if cfgFile == "" {
			defaultPath := os.ExpandEnv("$HOME/.config/eegviz.yaml")
			if _, err := os.Stat(defaultPath); err == nil {
				cfgFile = defaultPath
			}
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/eegviz.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for exports and the audit log (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&verboseLevel, "verbose", "v", 0, "verbose level: 0=info, 1=debug")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(markersCmd)
	rootCmd.AddCommand(bandsCmd)
	rootCmd.AddCommand(exportsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
}

// setupLogging configures slog based on the verbose level
func setupLogging(level int) {
	slogLevel := slog.LevelInfo
	if level >= 1 {
		slogLevel = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(handler))
}

// newService assembles a service with the persistent export audit store.
// When the audit database cannot be opened the session falls back to the
// in-memory log rather than failing the command.
func newService() service.Service {
	store := openExportStore()
	return service.New(cfg, store, nil, nil)
}

func openExportStore() exportlog.Store {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		slog.Warn("cannot create data directory, export log will not persist", "error", err)
		return exportlog.NewMemoryStore()
	}

	dbPath := filepath.Join(cfg.DataDir, "exports.db")
	store, err := exportlog.NewSQLiteStore(context.Background(), dbPath)
	if err != nil {
		slog.Warn("cannot open export log database, export log will not persist", "error", err)
		return exportlog.NewMemoryStore()
	}
	return store
}
