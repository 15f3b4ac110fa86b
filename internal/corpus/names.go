package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// specialReplacer handles characters that unicode decomposition cannot
// fold to ASCII (Serbian đ in particular).
var specialReplacer = strings.NewReplacer(
	"đ", "dj", "Đ", "Dj",
	"ß", "ss",
)

var (
	disallowedRe = regexp.MustCompile(`[^a-zA-Z0-9\s_-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeName converts a display name into a filesystem-safe key:
// diacritics folded to ASCII, disallowed characters removed, whitespace
// collapsed and replaced with underscores ("Đorđe Šuc" -> "Djordje_Suc").
func NormalizeName(name string) string {
	if name == "" {
		return name
	}
	name = specialReplacer.Replace(name)
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	name, _, _ = transform.String(t, name)
	name = disallowedRe.ReplaceAllString(name, "")
	name = whitespaceRe.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	return strings.ReplaceAll(name, " ", "_")
}

// NameStore persists the normalized -> original display name table as a
// JSON file. The table is append-only: an existing mapping is never
// overwritten. All access serializes on a mutex because the store is the
// one shared mutable record in the pipeline.
type NameStore struct {
	path string
	mu   sync.Mutex
}

// NewNameStore creates a name store backed by the given JSON file.
func NewNameStore(path string) *NameStore {
	return &NameStore{path: path}
}

// load reads the mapping table. Callers must hold s.mu.
func (s *NameStore) load() map[string]string {
	mapping := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		return mapping
	}
	if err := json.Unmarshal(data, &mapping); err != nil {
		// Corrupt table: start fresh rather than fail every admission.
		return make(map[string]string)
	}
	return mapping
}

// save writes the mapping table. Callers must hold s.mu.
func (s *NameStore) save(mapping map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating mapping directory: %w", err)
	}
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding name mapping: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing name mapping: %w", err)
	}
	return nil
}

// Record normalizes a display name for storage and records the mapping
// back to the original on first use. Returns the normalized key.
func (s *NameStore) Record(original string) (string, error) {
	normalized := NormalizeName(original)
	if normalized == "" || normalized == original {
		return normalized, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mapping := s.load()
	if _, ok := mapping[normalized]; ok {
		return normalized, nil
	}
	mapping[normalized] = original
	if err := s.save(mapping); err != nil {
		return normalized, err
	}
	return normalized, nil
}

// Resolve returns the original display name for a normalized key. When no
// mapping exists the key itself is returned.
func (s *NameStore) Resolve(normalized string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if original, ok := s.load()[normalized]; ok {
		return original
	}
	return normalized
}

// DisplayName resolves a normalized key for presentation: the recorded
// original if one exists, otherwise the key with underscores replaced by
// spaces.
func (s *NameStore) DisplayName(normalized string) string {
	if original := s.Resolve(normalized); original != normalized {
		return original
	}
	return strings.ReplaceAll(normalized, "_", " ")
}

// All returns a copy of the full mapping table.
func (s *NameStore) All() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}
