package cmd

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/supplyscope/internal/utils"
	"github.com/sw33tLie/supplyscope/pkg/mirror"
	"github.com/sw33tLie/supplyscope/pkg/render"
	"github.com/sw33tLie/supplyscope/pkg/storage"
	"github.com/sw33tLie/supplyscope/pkg/supplier"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Keep a local copy of suppliers and their compliance records",
}

var mirrorSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch every supplier's records and print what changed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		retries, _ := cmd.Flags().GetInt("retries")

		// Sync only reads from the backend, so retries are safe here.
		client, err := newAPIClient(retries)
		if err != nil {
			return err
		}

		return withDB(cmd.Context(), true, func(db *storage.DB) error {
			var printMu sync.Mutex
			res, err := mirror.Sync(cmd.Context(), mirror.Config{
				Source:      client,
				DB:          db,
				Concurrency: concurrency,
				Log:         utils.Log,
				OnSupplierDone: func(s supplier.Supplier, changes []storage.Change, isFirstRun bool) {
					if n, err := db.GetRecordCount(cmd.Context(), s.ID); err == nil {
						utils.Log.Debugf("Supplier %d (%s): %d record(s) mirrored", s.ID, s.Name, n)
					}
					if isFirstRun {
						return
					}
					printMu.Lock()
					defer printMu.Unlock()
					render.PrintChanges(os.Stdout, changes)
				},
			})
			if err != nil {
				return err
			}
			if !res.IsFirstRun {
				render.PrintChanges(os.Stdout, res.SupplierChanges)
			}
			utils.Log.Infof("Synced %d supplier(s), %d record change(s)", len(res.SyncedSupplierIDs), len(res.RecordChanges))
			if len(res.Errors) > 0 {
				return fmt.Errorf("%d supplier(s) failed to sync, first error: %w", len(res.Errors), res.Errors[0])
			}
			return nil
		})
	},
}

var mirrorChangesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Show recent changes seen by mirror sync (default 50)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withDB(cmd.Context(), false, func(db *storage.DB) error {
			changes, err := db.ListRecentChanges(cmd.Context(), limit)
			if err != nil {
				return err
			}
			render.PrintChangeLog(os.Stdout, changes)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(mirrorCmd)
	mirrorCmd.AddCommand(mirrorSyncCmd)
	mirrorCmd.AddCommand(mirrorChangesCmd)
	mirrorSyncCmd.Flags().IntP("concurrency", "c", 5, "Number of suppliers fetched at the same time")
	mirrorSyncCmd.Flags().Int("retries", 2, "Retries for failed backend reads")
	mirrorChangesCmd.Flags().Int("limit", 50, "Number of recent changes to show")
}
