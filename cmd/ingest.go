package cmd

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegate/internal/admission"
	"github.com/kozaktomas/facegate/internal/notify"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Pull pending images from the media hub and admit them",
	Long: `Fetch the media hub's pending face images, download each one and
run it through the admission pipeline. Outcomes are reported back to the
hub. Requires MEDIAHUB_URL and MEDIAHUB_TOKEN.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().Int("workers", 4, "Number of concurrent admissions")
}

func runIngest(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	if app.hub == nil {
		return fmt.Errorf("media hub is not configured, set MEDIAHUB_URL")
	}

	ctx := cmd.Context()
	pending, err := app.hub.FetchPending(ctx)
	if err != nil {
		return fmt.Errorf("fetching pending images: %w", err)
	}
	if len(pending) == 0 {
		fmt.Println("No pending images")
		return nil
	}
	fmt.Printf("Admitting %d pending images\n", len(pending))

	workers := mustGetInt(cmd, "workers")
	if workers < 1 {
		workers = 1
	}

	bar := progressbar.Default(int64(len(pending)), "admitting")
	queue := make(chan notify.PendingImage)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for image := range queue {
				app.ingestOne(ctx, image)
				_ = bar.Add(1)
			}
		}()
	}
	for _, image := range pending {
		queue <- image
	}
	close(queue)
	wg.Wait()
	return nil
}

// ingestOne downloads one pending image and runs it through admission.
// A failed download is logged and the batch keeps going; the admission
// pipeline handles its own cleanup and hub reporting.
func (a *app) ingestOne(ctx context.Context, image notify.PendingImage) {
	path, err := a.hub.Download(ctx, image, a.cfg.Storage.UploadsDir)
	if err != nil {
		log.Printf("ingest: downloading %s: %v", image.ID, err)
		return
	}

	a.controller.Admit(ctx, admission.Request{
		ImagePath: path,
		Person:    image.Person,
		Date:      image.AdmissionDate(),
		Domain:    image.Domain,
	})
}
