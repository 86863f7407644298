package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all local data (results, progress, saved attempts)",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("this deletes all local data; re-run with --yes to confirm")
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		storePath, snapDir := a.StorePath, a.SnapDir
		if err := a.Close(); err != nil {
			return fmt.Errorf("close store: %w", err)
		}

		for _, p := range []string{storePath, storePath + "-wal", storePath + "-shm"} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove %s: %w", p, err)
			}
		}
		if err := os.RemoveAll(snapDir); err != nil {
			return fmt.Errorf("remove snapshots: %w", err)
		}

		fmt.Println("All local data removed.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
