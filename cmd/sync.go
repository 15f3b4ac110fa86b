package cmd

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegate/internal/syncer"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Promote staged images to the production corpus",
	Long: `Reconcile the staging corpus into the production corpus.
New staged images are copied newest-first under the same retention quotas
as admission, verified, and removed from staging. Run this as a single
non-overlapping batch job.

Example:
  facegate sync
  facegate sync --domain example.com`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().String("domain", "", "Reconcile a single domain (default: all)")
}

func runSync(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	if domain := mustGetString(cmd, "domain"); domain != "" {
		report, err := app.reconciler.Sync(cmd.Context(), domain)
		if err != nil {
			return err
		}
		printSyncReport(report)
		return nil
	}

	entries, err := os.ReadDir(app.cfg.Storage.StagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("Nothing to sync")
			return nil
		}
		return fmt.Errorf("listing staging domains: %w", err)
	}

	var domains []string
	for _, entry := range entries {
		if entry.IsDir() {
			domains = append(domains, entry.Name())
		}
	}
	if len(domains) == 0 {
		fmt.Println("Nothing to sync")
		return nil
	}

	bar := progressbar.Default(int64(len(domains)), "syncing domains")
	for _, domain := range domains {
		report, err := app.reconciler.Sync(cmd.Context(), domain)
		if err != nil {
			return err
		}
		_ = bar.Add(1)
		printSyncReport(report)
	}
	return nil
}

func printSyncReport(report syncer.Report) {
	fmt.Printf("%s: copied %d, quota-skipped %d, copy failures %d, verify failures %d, unparsable %d\n",
		report.Domain, report.Copied, report.SkippedQuota, report.CopyFailures, report.VerifyFailures, report.Unparsable)
}
