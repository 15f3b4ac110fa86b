package cmd

import (
	"fmt"

	"github.com/kozaktomas/facegate/internal/admission"
	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/corpus"
	"github.com/kozaktomas/facegate/internal/engine"
	"github.com/kozaktomas/facegate/internal/faceval"
	"github.com/kozaktomas/facegate/internal/notify"
	"github.com/kozaktomas/facegate/internal/objectstore"
	"github.com/kozaktomas/facegate/internal/recognize"
	"github.com/kozaktomas/facegate/internal/syncer"
)

// app wires the pipeline collaborators from the environment config.
// Commands share this assembly so serve, sync, ingest and train all see
// the same storage layout and thresholds.
type app struct {
	cfg        *config.Config
	engine     *engine.Client
	names      *corpus.NameStore
	validator  *faceval.Validator
	controller *admission.Controller
	runner     *admission.Runner
	aggregator *recognize.Aggregator
	reconciler *syncer.Reconciler
	hub        *notify.Client
}

func newApp() (*app, error) {
	cfg := config.Load()

	engineClient := engine.NewClient(cfg.Engine.URL)
	names := corpus.NewNameStore(cfg.Storage.NameMappingPath)

	validator := &faceval.Validator{
		MinConfidence: cfg.Pipeline.Validation.MinConfidence,
		MinFaceSize:   cfg.Pipeline.Validation.MinFaceSize,
		BlurThreshold: cfg.Pipeline.Validation.BlurThreshold,
		SizeRatio:     cfg.Pipeline.Validation.SizeRatio,
	}

	controller := &admission.Controller{
		Engine:    engineClient,
		Validator: validator,
		Ledger: &corpus.Ledger{
			StagingDir:    cfg.Storage.StagingDir,
			ProductionDir: cfg.Storage.ProductionDir,
			MaxTotal:      cfg.Pipeline.Quota.MaxTotalImages,
			MaxDaily:      cfg.Pipeline.Quota.MaxDailyImages,
		},
		Names:      names,
		StagingDir: cfg.Storage.StagingDir,
		CropHeight: cfg.Pipeline.Recognition.CropHeight,
	}

	store, err := objectstore.New(
		cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket)
	if err != nil {
		return nil, fmt.Errorf("setting up object store: %w", err)
	}
	if store != nil {
		controller.Store = store
	}

	hub, err := notify.NewClient(cfg.MediaHub.URL, cfg.MediaHub.Token)
	if err != nil {
		return nil, fmt.Errorf("setting up media hub client: %w", err)
	}
	if hub != nil {
		controller.Notifier = hub
	}

	return &app{
		cfg:        cfg,
		engine:     engineClient,
		names:      names,
		validator:  validator,
		controller: controller,
		runner:     &admission.Runner{Controller: controller},
		aggregator: &recognize.Aggregator{
			Threshold:        cfg.Pipeline.Recognition.Threshold,
			Tolerance:        cfg.Pipeline.Recognition.ClusterTolerance,
			AvgWeight:        cfg.Pipeline.Scoring.AvgDistanceWeight,
			MinWeight:        cfg.Pipeline.Scoring.MinDistanceWeight,
			OccurrenceWeight: cfg.Pipeline.Scoring.OccurrenceWeight,
			Names:            names,
		},
		reconciler: &syncer.Reconciler{
			StagingDir:    cfg.Storage.StagingDir,
			ProductionDir: cfg.Storage.ProductionDir,
			MaxTotal:      cfg.Pipeline.Quota.MaxTotalImages,
			MaxDaily:      cfg.Pipeline.Quota.MaxDailyImages,
			BatchSize:     cfg.Pipeline.Sync.BatchSize,
			Refresh:       engineClient.RefreshIndex,
		},
		hub: hub,
	}, nil
}
