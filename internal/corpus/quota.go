package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Quota violation errors. Both are terminal for the image being admitted.
var (
	ErrPersonLimit = errors.New("person image limit reached")
	ErrDailyLimit  = errors.New("daily image limit reached")
)

// Ledger derives per-person retention counts for a domain by scanning the
// staging and production corpus folders. Counts are computed at decision
// time; there is no cached state and no lock. Two concurrent admissions
// near the cap can therefore both pass the check - an accepted
// eventual-consistency gap for this workload.
type Ledger struct {
	StagingDir    string
	ProductionDir string
	MaxTotal      int
	MaxDaily      int
}

// countInDir counts images in dir whose reconstructed person token matches
// the sanitized person key, optionally filtered to names containing date.
func countInDir(dir, person, date string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// Missing domain folder means no images yet.
		return 0
	}

	count := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !IsImageFile(name) {
			continue
		}
		if PersonToken(name) != person {
			continue
		}
		if date != "" && !strings.Contains(name, date) {
			continue
		}
		count++
	}
	return count
}

// CountTotal returns the number of stored images for a person in a domain,
// summed across the staging and production tiers.
func (l *Ledger) CountTotal(person, domain string) int {
	person = SanitizePerson(person)
	folder := CleanDomain(domain)
	return countInDir(filepath.Join(l.StagingDir, folder), person, "") +
		countInDir(filepath.Join(l.ProductionDir, folder), person, "")
}

// CountOnDate returns the number of stored images for a person in a domain
// whose filename carries the given ISO date, across both tiers.
func (l *Ledger) CountOnDate(person, domain, date string) int {
	person = SanitizePerson(person)
	folder := CleanDomain(domain)
	return countInDir(filepath.Join(l.StagingDir, folder), person, date) +
		countInDir(filepath.Join(l.ProductionDir, folder), person, date)
}

// Check enforces the retention limits before any disk write. The total
// cap is checked before the daily cap.
func (l *Ledger) Check(person, domain, date string) error {
	if l.CountTotal(person, domain) >= l.MaxTotal {
		return ErrPersonLimit
	}
	if l.CountOnDate(person, domain, date) >= l.MaxDaily {
		return ErrDailyLimit
	}
	return nil
}
