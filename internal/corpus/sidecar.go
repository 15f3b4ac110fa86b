package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Coordinates is a face bounding box relative to the source image (0-1).
type Coordinates struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Sidecar is the structured metadata record written next to each stored
// image. The filename stays the authoritative identity record for
// backward-compatible reads; the sidecar carries what the filename cannot.
type Sidecar struct {
	Person      string      `json:"person"`
	DisplayName string      `json:"display_name,omitempty"`
	Date        string      `json:"date"`
	Domain      string      `json:"domain"`
	Coordinates Coordinates `json:"coordinates"`
	CreatedAt   time.Time   `json:"created_at"`
}

// SidecarPath returns the sidecar filename for a stored image path.
func SidecarPath(imagePath string) string {
	return imagePath + ".json"
}

// WriteSidecar writes the metadata record next to the stored image.
func WriteSidecar(imagePath string, sc Sidecar) error {
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding sidecar: %w", err)
	}
	if err := os.WriteFile(SidecarPath(imagePath), data, 0o644); err != nil {
		return fmt.Errorf("writing sidecar: %w", err)
	}
	return nil
}

// ReadSidecar loads the metadata record for a stored image, if present.
func ReadSidecar(imagePath string) (*Sidecar, error) {
	data, err := os.ReadFile(SidecarPath(imagePath))
	if err != nil {
		return nil, err
	}
	var sc Sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decoding sidecar: %w", err)
	}
	return &sc, nil
}
