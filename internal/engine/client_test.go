package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "query.jpg")
	if err := os.WriteFile(path, []byte("fake image bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/faces/extract" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}
		json.NewEncoder(w).Encode(ExtractResult{
			Width:  800,
			Height: 600,
			Faces: []DetectedFace{{
				BBox:       Box{X: 10, Y: 20, W: 100, H: 120},
				Confidence: 0.995,
			}},
		})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).ExtractFaces(context.Background(), writeImage(t))
	if err != nil {
		t.Fatalf("ExtractFaces() error: %v", err)
	}
	if result.Width != 800 || len(result.Faces) != 1 {
		t.Errorf("result = %+v", result)
	}
	if result.Faces[0].Confidence != 0.995 {
		t.Errorf("confidence = %v", result.Faces[0].Confidence)
	}
}

func TestFindMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/faces/find" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart: %v", err)
		}
		if got := r.FormValue("db_path"); got != "/corpus/example.com" {
			t.Errorf("db_path = %q", got)
		}
		if got := r.FormValue("threshold"); got != "0.35" {
			t.Errorf("threshold = %q", got)
		}
		json.NewEncoder(w).Encode(findResponse{Matches: []MatchRow{
			{Identity: "/corpus/example.com/John_Doe_2026-01-01_1.jpg", Distance: 0.2},
		}})
	}))
	defer server.Close()

	rows, err := NewClient(server.URL).FindMatches(context.Background(), writeImage(t), "/corpus/example.com", 0.35)
	if err != nil {
		t.Fatalf("FindMatches() error: %v", err)
	}
	if len(rows) != 1 || rows[0].Distance != 0.2 {
		t.Errorf("rows = %+v", rows)
	}
}

func TestRefreshIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/index/refresh" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		if body["db_path"] != "/corpus/example.com" {
			t.Errorf("db_path = %q", body["db_path"])
		}
	}))
	defer server.Close()

	if err := NewClient(server.URL).RefreshIndex(context.Background(), "/corpus/example.com"); err != nil {
		t.Fatalf("RefreshIndex() error: %v", err)
	}
}

func TestEngineErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := NewClient(server.URL).ExtractFaces(context.Background(), writeImage(t)); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
