package admission

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/facegate/internal/corpus"
	"github.com/kozaktomas/facegate/internal/engine"
	"github.com/kozaktomas/facegate/internal/faceval"
)

// FaceEngine is the detection capability the pipeline needs from the
// external recognition engine.
type FaceEngine interface {
	ExtractFaces(ctx context.Context, imagePath string) (*engine.ExtractResult, error)
}

// ObjectStore receives a copy of every admitted crop. Uploads are best
// effort and never block admission.
type ObjectStore interface {
	Put(ctx context.Context, key, localPath string) error
}

// Notifier reports terminal outcomes to an external collaborator. Calls
// are best effort.
type Notifier interface {
	ReportAdmitted(ctx context.Context, person, domain, filename string) error
	ReportSkipped(ctx context.Context, person, domain, reason string) error
}

// Controller runs the admission state machine. Engine, Validator, Ledger
// and Names are required; Store and Notifier may be nil.
type Controller struct {
	Engine     FaceEngine
	Validator  *faceval.Validator
	Ledger     *corpus.Ledger
	Names      *corpus.NameStore
	Store      ObjectStore
	Notifier   Notifier
	StagingDir string
	CropHeight int
}

// Admit drives one image through the pipeline and returns its terminal
// outcome. The source image is deleted before returning, on every path;
// a stored file exists only if every check passed.
func (c *Controller) Admit(ctx context.Context, req Request) Outcome {
	defer func() {
		if err := os.Remove(req.ImagePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("admission: could not remove source %s: %v", req.ImagePath, err)
		}
	}()

	log.Printf("admission: %s received image %s for %q", req.Domain, filepath.Base(req.ImagePath), req.Person)

	outcome := c.run(ctx, req)
	switch outcome.State {
	case StateAdmitted:
		log.Printf("admission: admitted %s", outcome.StoredPath)
		c.afterAdmit(ctx, req, outcome.StoredPath)
	case StateRejected:
		log.Printf("admission: rejected %s for %q: %s", filepath.Base(req.ImagePath), req.Person, outcome.Reason)
		c.afterReject(ctx, req, outcome.Reason)
	}
	return outcome
}

func (c *Controller) run(ctx context.Context, req Request) Outcome {
	face, img, err := c.validate(ctx, req)
	if err != nil {
		var rejection *faceval.RejectionError
		if errors.As(err, &rejection) {
			return Outcome{State: StateRejected, Reason: string(rejection.Reason)}
		}
		log.Printf("admission: extraction failed for %s: %v", req.ImagePath, err)
		return Outcome{State: StateRejected, Reason: ReasonExtractionFailed}
	}

	// The normalized key is what filenames carry, so it is also the key
	// the ledger must count by.
	person, err := c.Names.Record(req.Person)
	if err != nil {
		log.Printf("admission: recording name mapping for %q: %v", req.Person, err)
		return Outcome{State: StateRejected, Reason: ReasonPersistFailed}
	}

	if err := c.Ledger.Check(person, req.Domain, req.Date); err != nil {
		switch {
		case errors.Is(err, corpus.ErrPersonLimit):
			return Outcome{State: StateRejected, Reason: ReasonPersonLimit}
		default:
			return Outcome{State: StateRejected, Reason: ReasonDailyLimit}
		}
	}

	crop, err := CropJPEG(img, face.Original, c.CropHeight)
	if err != nil {
		log.Printf("admission: extracting crop failed for %s: %v", req.ImagePath, err)
		return Outcome{State: StateRejected, Reason: ReasonExtractionFailed}
	}

	stored, err := c.persist(req, person, img, face, crop)
	if err != nil {
		log.Printf("admission: persisting failed for %s: %v", req.ImagePath, err)
		return Outcome{State: StateRejected, Reason: ReasonPersistFailed}
	}
	return Outcome{State: StateAdmitted, StoredPath: stored}
}

// validate decodes the upload, runs detection and applies the candidate
// filters. The decoded image is returned for the extraction step.
func (c *Controller) validate(ctx context.Context, req Request) (*faceval.ValidFace, image.Image, error) {
	file, err := os.Open(req.ImagePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening upload: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding upload: %w", err)
	}

	result, err := c.Engine.ExtractFaces(ctx, req.ImagePath)
	if err != nil {
		return nil, nil, fmt.Errorf("extracting faces: %w", err)
	}

	face, err := c.Validator.ValidateSingle(img, result)
	if err != nil {
		return nil, nil, err
	}
	return face, img, nil
}

// persist writes the crop and its sidecar under the domain's staging
// folder. A failed image write leaves nothing behind.
func (c *Controller) persist(req Request, person string, img image.Image, face *faceval.ValidFace, crop []byte) (string, error) {
	dir := filepath.Join(c.StagingDir, corpus.CleanDomain(req.Domain))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating staging folder: %w", err)
	}

	path := filepath.Join(dir, corpus.BuildFilename(person, req.Date, time.Now().UnixMilli()))
	if err := os.WriteFile(path, crop, 0o644); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing crop: %w", err)
	}

	bounds := img.Bounds()
	sc := corpus.Sidecar{
		Person:      person,
		DisplayName: c.Names.DisplayName(person),
		Date:        req.Date,
		Domain:      req.Domain,
		Coordinates: corpus.Coordinates{
			X:      face.Original.X / float64(bounds.Dx()),
			Y:      face.Original.Y / float64(bounds.Dy()),
			Width:  face.Original.W / float64(bounds.Dx()),
			Height: face.Original.H / float64(bounds.Dy()),
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := corpus.WriteSidecar(path, sc); err != nil {
		// The image is already admitted; the filename alone still
		// carries the identity record.
		log.Printf("admission: sidecar write failed for %s: %v", path, err)
	}
	return path, nil
}

func (c *Controller) afterAdmit(ctx context.Context, req Request, stored string) {
	filename := filepath.Base(stored)
	if c.Store != nil {
		if err := c.Store.Put(ctx, "recognized_faces/"+filename, stored); err != nil {
			log.Printf("admission: object store upload failed for %s: %v", filename, err)
		}
	}
	if c.Notifier != nil {
		if err := c.Notifier.ReportAdmitted(ctx, req.Person, req.Domain, filename); err != nil {
			log.Printf("admission: admit notification failed for %s: %v", filename, err)
		}
	}
}

func (c *Controller) afterReject(ctx context.Context, req Request, reason string) {
	if c.Notifier == nil {
		return
	}
	if err := c.Notifier.ReportSkipped(ctx, req.Person, req.Domain, reason); err != nil {
		log.Printf("admission: reject notification failed for %q: %v", req.Person, err)
	}
}
