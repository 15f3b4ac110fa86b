// Package notify is the client for the media hub API: the external
// system that feeds pending images into admission and receives outcome
// reports back.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Client talks to the media hub over HTTP with bearer-token auth.
type Client struct {
	baseURL *url.URL
	token   string
	client  *http.Client
}

// NewClient creates a media hub client. Returns nil when no base URL is
// configured, so callers can treat the hub as absent.
func NewClient(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		return nil, nil
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing media hub URL: %w", err)
	}
	return &Client{
		baseURL: parsed,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// PendingImage is one hub-side image waiting for admission.
type PendingImage struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Person string `json:"person"`
	Date   string `json:"date"`
	Domain string `json:"domain"`
}

// hub deployments disagree on date encoding.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02.01.2006",
	"2006/01/02",
}

// AdmissionDate normalizes the hub's date field to YYYY-MM-DD, falling
// back to the current date when no known format matches.
func (p PendingImage) AdmissionDate() string {
	for _, format := range dateFormats {
		if parsed, err := time.Parse(format, p.Date); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return time.Now().Format("2006-01-02")
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media hub request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading media hub response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("media hub error (status %d): %s", resp.StatusCode, string(data))
	}
	return data, nil
}

// ReportAdmitted tells the hub an image was admitted to the corpus.
func (c *Client) ReportAdmitted(ctx context.Context, person, domain, filename string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/faces/admitted", map[string]string{
		"person":   person,
		"domain":   domain,
		"filename": filename,
	})
	return err
}

// ReportSkipped tells the hub an image was rejected and why.
func (c *Client) ReportSkipped(ctx context.Context, person, domain, reason string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/faces/skipped", map[string]string{
		"person": person,
		"domain": domain,
		"reason": reason,
	})
	return err
}

// FetchPending lists hub images waiting for admission.
func (c *Client) FetchPending(ctx context.Context) ([]PendingImage, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/faces/pending", nil)
	if err != nil {
		return nil, err
	}
	var pending []PendingImage
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("parsing pending list: %w", err)
	}
	return pending, nil
}

// Download fetches a pending image into dir and returns the local path.
func (c *Client) Download(ctx context.Context, image PendingImage, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, image.URL, nil)
	if err != nil {
		return "", fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", image.ID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: status %d", image.ID, resp.StatusCode)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating download dir: %w", err)
	}
	path := filepath.Join(dir, image.ID+".jpg")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating download file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing download: %w", err)
	}
	return path, nil
}
