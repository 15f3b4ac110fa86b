package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultEngineURL = "http://localhost:8000"

// Client talks to the face-recognition engine over HTTP. Every call is a
// single bounded request; the engine is never retried automatically.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates an engine client for the given base URL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultEngineURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

// postMultipart uploads an image file plus extra form fields and returns
// the raw response body.
func (c *Client) postMultipart(ctx context.Context, endpoint, imagePath string, fields map[string]string) ([]byte, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("writing image data: %w", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("writing form field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("engine error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// ExtractFaces runs face detection on an image. The engine detects on a
// downscaled copy; the result carries that copy's dimensions alongside
// the detections.
func (c *Client) ExtractFaces(ctx context.Context, imagePath string) (*ExtractResult, error) {
	body, err := c.postMultipart(ctx, "/faces/extract", imagePath, nil)
	if err != nil {
		return nil, err
	}

	var result ExtractResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing extract response: %w", err)
	}
	return &result, nil
}

// FindMatches searches an image against a reference corpus folder and
// returns the raw match rows. The engine shares the filesystem with this
// service, so corpusDir is passed as a path.
func (c *Client) FindMatches(ctx context.Context, imagePath, corpusDir string, threshold float64) ([]MatchRow, error) {
	body, err := c.postMultipart(ctx, "/faces/find", imagePath, map[string]string{
		"db_path":   corpusDir,
		"threshold": fmt.Sprintf("%g", threshold),
	})
	if err != nil {
		return nil, err
	}

	var result findResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing find response: %w", err)
	}
	return result.Matches, nil
}

// RefreshIndex asks the engine to rebuild its index over a corpus folder
// so newly synced images become searchable without a restart.
func (c *Client) RefreshIndex(ctx context.Context, corpusDir string) error {
	payload, err := json.Marshal(map[string]string{"db_path": corpusDir})
	if err != nil {
		return fmt.Errorf("marshaling refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/index/refresh", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("engine error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}
