package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/eegvizlab/eegviz/internal/exportlog"
	"github.com/spf13/cobra"
)

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "List the persisted export audit trail",
	Long:  `List every export recorded in the data directory's audit database, oldest first. The trail is append-only and survives across sessions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := filepath.Join(cfg.DataDir, "exports.db")
		store, err := exportlog.NewSQLiteStore(context.Background(), dbPath)
		if err != nil {
			return fmt.Errorf("failed to open export log: %w", err)
		}
		defer store.Close()

		entries, err := store.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("no exports recorded")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s  %-5s %s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Format, e.Path)
			if e.Detail != "" {
				fmt.Printf("  (%s)", e.Detail)
			}
			fmt.Println()
		}
		return nil
	},
}
