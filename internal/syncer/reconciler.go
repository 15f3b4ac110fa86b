// Package syncer migrates admitted images from staging domain folders to
// the production corpus the recognition engine searches against. Runs are
// idempotent and designed for a single non-overlapping batch job.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/kozaktomas/facegate/internal/corpus"
)

const defaultBatchSize = 30

// ErrVerifyFailed marks a copy whose byte size did not match the source.
// The copy is discarded and the source kept.
var ErrVerifyFailed = errors.New("size verification failed")

// RefreshFunc re-points the recognition engine at an updated production
// folder so newly synced identities become searchable.
type RefreshFunc func(ctx context.Context, corpusDir string) error

// Reconciler copies new staging files into production, enforcing the
// same retention quotas as admission. Quota-skipped files stay in
// staging; a failed copy never loses the source.
type Reconciler struct {
	StagingDir    string
	ProductionDir string
	MaxTotal      int
	MaxDaily      int
	BatchSize     int
	Refresh       RefreshFunc
}

// Report summarizes one reconciliation run over a domain. CopyFailures
// counts files that could not be copied at all; VerifyFailures counts
// copies discarded because the byte size did not match.
type Report struct {
	Domain         string
	Copied         int
	SkippedQuota   int
	CopyFailures   int
	VerifyFailures int
	Unparsable     int
}

// Sync reconciles one domain. New files are processed newest-first so
// that, if the total cap is hit mid-run, the most recent evidence is
// preferentially retained.
func (r *Reconciler) Sync(ctx context.Context, domain string) (Report, error) {
	report := Report{Domain: domain}
	folder := corpus.CleanDomain(domain)
	stagingDir := filepath.Join(r.StagingDir, folder)
	productionDir := filepath.Join(r.ProductionDir, folder)

	staged, err := listImages(stagingDir)
	if err != nil {
		return report, fmt.Errorf("listing staging for %s: %w", domain, err)
	}
	existing, err := listImages(productionDir)
	if err != nil && !os.IsNotExist(err) {
		return report, fmt.Errorf("listing production for %s: %w", domain, err)
	}

	produced := make(map[string]bool, len(existing))
	for _, name := range existing {
		produced[name] = true
	}
	var pending []string
	for _, name := range staged {
		if !produced[name] {
			pending = append(pending, name)
		}
	}
	if len(pending) == 0 {
		return report, nil
	}
	sort.Sort(sort.Reverse(sort.StringSlice(pending)))

	if err := os.MkdirAll(productionDir, 0o755); err != nil {
		return report, fmt.Errorf("creating production folder: %w", err)
	}

	// Counts for the production set, seeded once and kept in memory so
	// the disk is not re-scanned per file within the run.
	totals := make(map[string]int)
	daily := make(map[string]int)
	for _, name := range existing {
		if person, date, ok := corpus.ParseFilename(name); ok && person != "" {
			totals[person]++
			daily[person+"|"+date]++
		}
	}

	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	copiedInBatch := 0
	for i, name := range pending {
		person, date, ok := corpus.ParseFilename(name)
		switch {
		case !ok || person == "":
			log.Printf("sync: %s: unparsable filename %s, copying without quota check", domain, name)
			report.Unparsable++
		case totals[person] >= r.MaxTotal:
			report.SkippedQuota++
			continue
		case daily[person+"|"+date] >= r.MaxDaily:
			report.SkippedQuota++
			continue
		}

		src := filepath.Join(stagingDir, name)
		dst := filepath.Join(productionDir, name)
		if err := migrate(src, dst); err != nil {
			log.Printf("sync: %s: %v", domain, err)
			if errors.Is(err, ErrVerifyFailed) {
				report.VerifyFailures++
			} else {
				report.CopyFailures++
			}
			continue
		}
		if ok && person != "" {
			totals[person]++
			daily[person+"|"+date]++
		}
		report.Copied++
		copiedInBatch++

		if (i+1)%batchSize == 0 && copiedInBatch > 0 {
			r.refresh(ctx, productionDir)
			copiedInBatch = 0
		}
	}
	if copiedInBatch > 0 {
		r.refresh(ctx, productionDir)
	}
	return report, nil
}

// SyncAll reconciles every domain folder present in staging.
func (r *Reconciler) SyncAll(ctx context.Context) ([]Report, error) {
	entries, err := os.ReadDir(r.StagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing staging domains: %w", err)
	}

	var reports []Report
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		report, err := r.Sync(ctx, entry.Name())
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (r *Reconciler) refresh(ctx context.Context, productionDir string) {
	if r.Refresh == nil {
		return
	}
	if err := r.Refresh(ctx, productionDir); err != nil {
		log.Printf("sync: index refresh failed for %s: %v", productionDir, err)
	}
}

// listImages returns the image filenames directly inside dir. A missing
// directory yields an empty list for staging callers to treat as "no
// work"; other errors are returned.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !corpus.IsImageFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// migrate copies src to dst preserving mode and mtime, verifies the byte
// size, and deletes the source only after verification. The sidecar, if
// present, travels with the image.
func migrate(src, dst string) error {
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("copying %s: %w", filepath.Base(src), err)
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("verifying %s: %w", filepath.Base(src), err)
	}
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return fmt.Errorf("verifying %s: %w", filepath.Base(src), err)
	}
	if srcInfo.Size() != dstInfo.Size() {
		os.Remove(dst)
		return fmt.Errorf("%w for %s: source %d bytes, copy %d bytes, keeping source",
			ErrVerifyFailed, filepath.Base(src), srcInfo.Size(), dstInfo.Size())
	}

	if _, err := os.Stat(corpus.SidecarPath(src)); err == nil {
		if err := copyFile(corpus.SidecarPath(src), corpus.SidecarPath(dst)); err != nil {
			log.Printf("sync: sidecar copy failed for %s: %v", filepath.Base(src), err)
		} else {
			os.Remove(corpus.SidecarPath(src))
		}
	}

	if err := os.Remove(src); err != nil {
		return fmt.Errorf("removing synced source %s: %w", filepath.Base(src), err)
	}
	return nil
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	if err := os.Chmod(dst, info.Mode()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
