package cmd

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/facegate/internal/admission"
	"github.com/kozaktomas/facegate/internal/corpus"
)

var trainCmd = &cobra.Command{
	Use:   "train <domain>",
	Short: "Bulk-import training folders into the production corpus",
	Long: `Import per-person training folders into a domain's production
corpus. Each subfolder of the training directory is one person; every
face found in its images is cropped and stored. Unlike the upload path,
group shots are allowed: all faces comparable in size to the largest one
are kept.

Example:
  facegate train example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().Bool("dry-run", false, "Detect and report faces without storing anything")
}

func runTrain(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	domain := args[0]
	dryRun := mustGetBool(cmd, "dry-run")

	persons, err := os.ReadDir(app.cfg.Storage.TrainingDir)
	if err != nil {
		return fmt.Errorf("listing training folders: %w", err)
	}

	outDir := filepath.Join(app.cfg.Storage.ProductionDir, corpus.CleanDomain(domain))
	if !dryRun {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating production folder: %w", err)
		}
	}

	for _, person := range persons {
		if !person.IsDir() {
			continue
		}
		if err := app.trainPerson(cmd, person.Name(), outDir, dryRun); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) trainPerson(cmd *cobra.Command, person, outDir string, dryRun bool) error {
	dir := filepath.Join(a.cfg.Storage.TrainingDir, person)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", dir, err)
	}

	normalized, err := a.names.Record(person)
	if err != nil {
		return fmt.Errorf("recording name for %s: %w", person, err)
	}

	var images []string
	for _, entry := range entries {
		if !entry.IsDir() && corpus.IsImageFile(entry.Name()) {
			images = append(images, entry.Name())
		}
	}
	if len(images) == 0 {
		return nil
	}

	bar := progressbar.Default(int64(len(images)), person)
	stored := 0
	for _, name := range images {
		stored += a.trainImage(cmd, filepath.Join(dir, name), normalized, outDir, dryRun)
		_ = bar.Add(1)
	}
	fmt.Printf("%s: stored %d faces from %d images\n", person, stored, len(images))
	return nil
}

// trainImage extracts every comparably-sized face from one training
// image and stores the crops. Returns the number of stored faces.
func (a *app) trainImage(cmd *cobra.Command, path, person, outDir string, dryRun bool) int {
	file, err := os.Open(path)
	if err != nil {
		log.Printf("train: opening %s: %v", path, err)
		return 0
	}
	img, _, err := image.Decode(file)
	file.Close()
	if err != nil {
		log.Printf("train: decoding %s: %v", path, err)
		return 0
	}

	result, err := a.engine.ExtractFaces(cmd.Context(), path)
	if err != nil {
		log.Printf("train: extracting faces from %s: %v", path, err)
		return 0
	}

	faces := a.validator.ValidateBatch(img, result)
	if dryRun {
		return len(faces)
	}

	info, err := os.Stat(path)
	date := time.Now()
	if err == nil {
		date = info.ModTime()
	}

	stored := 0
	for _, face := range faces {
		crop, err := admission.CropJPEG(img, face.Original, a.cfg.Pipeline.Recognition.CropHeight)
		if err != nil {
			log.Printf("train: cropping %s: %v", path, err)
			continue
		}
		out := filepath.Join(outDir, corpus.BuildFilename(person, date.Format("2006-01-02"), time.Now().UnixMilli()+int64(stored)))
		if err := os.WriteFile(out, crop, 0o644); err != nil {
			log.Printf("train: writing %s: %v", out, err)
			continue
		}
		stored++
	}
	return stored
}
