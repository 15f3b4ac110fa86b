// Package recognize turns raw corpus-search hits into a single ranked
// identity decision. A corpus search returns one row per matched
// reference image; several rows usually describe the same detected face
// region, so rows are clustered by position before identities are
// scored.
package recognize

import (
	"math"
	"sort"
	"strings"

	"github.com/kozaktomas/facegate/internal/corpus"
	"github.com/kozaktomas/facegate/internal/engine"
)

// Candidate is one cluster representative: a matched reference identity
// with its query-face position as percentages of the resized image.
type Candidate struct {
	Person   string  `json:"person"`
	Distance float64 `json:"distance"`
	X        float64 `json:"x_percent"`
	Y        float64 `json:"y_percent"`
	W        float64 `json:"w_percent"`
	H        float64 `json:"h_percent"`
}

// Identity aggregates all cluster representatives of one person.
type Identity struct {
	Person        string    `json:"person"`
	DisplayName   string    `json:"display_name"`
	Occurrences   int       `json:"occurrences"`
	AvgDistance   float64   `json:"avg_distance"`
	MinDistance   float64   `json:"min_distance"`
	WeightedScore float64   `json:"weighted_score"`
	Region        Candidate `json:"region"` // min-distance representative
}

// Result is the outcome of aggregating one query image's matches. When
// no identity clears the threshold, Matched is false and Diagnostics
// still carries every cluster representative for inspection.
type Result struct {
	Matched     bool        `json:"matched"`
	Best        *Identity   `json:"best,omitempty"`
	Confidence  float64     `json:"confidence"`
	Ranked      []Identity  `json:"ranked,omitempty"`
	Diagnostics []Candidate `json:"diagnostics"`
}

// NameResolver maps a normalized person key to its display form.
type NameResolver interface {
	DisplayName(person string) string
}

// Aggregator scores corpus-search hits into identities. Threshold is the
// maximum distance a representative may have to count as a match;
// Tolerance is the position delta (in percent) under which two hits are
// considered the same face region. The weights are calibrated scoring
// coefficients: more corroborating hits and lower distances both lower
// the score, and the occurrence bonus is an intentional bias toward
// well-represented identities.
type Aggregator struct {
	Threshold        float64
	Tolerance        float64
	AvgWeight        float64
	MinWeight        float64
	OccurrenceWeight float64
	Names            NameResolver
}

// Aggregate reduces raw match rows to a ranked identity list. Rows are
// clustered by position, each cluster is collapsed to its lowest-distance
// row, and identities with no representative under the threshold are
// discarded. It never fails: an empty or hopeless input yields an
// unmatched Result.
func (a *Aggregator) Aggregate(rows []engine.MatchRow, resizedW, resizedH int) Result {
	reps := clusterByPosition(a.candidates(rows, resizedW, resizedH), a.Tolerance)

	byPerson := make(map[string][]Candidate)
	for _, rep := range reps {
		if rep.Distance < a.Threshold {
			byPerson[rep.Person] = append(byPerson[rep.Person], rep)
		}
	}

	ranked := make([]Identity, 0, len(byPerson))
	for person, hits := range byPerson {
		ranked = append(ranked, a.score(person, hits))
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].WeightedScore != ranked[j].WeightedScore {
			return ranked[i].WeightedScore < ranked[j].WeightedScore
		}
		return ranked[i].MinDistance < ranked[j].MinDistance
	})

	if len(ranked) == 0 {
		return Result{Diagnostics: reps}
	}
	best := ranked[0]
	return Result{
		Matched:     true,
		Best:        &best,
		Confidence:  1 - best.MinDistance,
		Ranked:      ranked,
		Diagnostics: reps,
	}
}

// candidates parses identities out of reference paths and converts boxes
// to percentages of the resized query image, rounded to two decimals.
func (a *Aggregator) candidates(rows []engine.MatchRow, resizedW, resizedH int) []Candidate {
	if resizedW <= 0 || resizedH <= 0 {
		return nil
	}
	out := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, Candidate{
			Person:   corpus.PersonToken(row.Identity),
			Distance: row.Distance,
			X:        round2(row.SourceX / float64(resizedW) * 100),
			Y:        round2(row.SourceY / float64(resizedH) * 100),
			W:        round2(row.SourceW / float64(resizedW) * 100),
			H:        round2(row.SourceH / float64(resizedH) * 100),
		})
	}
	return out
}

func (a *Aggregator) score(person string, hits []Candidate) Identity {
	sum := 0.0
	best := hits[0]
	for _, hit := range hits {
		sum += hit.Distance
		if hit.Distance < best.Distance {
			best = hit
		}
	}
	avg := sum / float64(len(hits))

	return Identity{
		Person:        person,
		DisplayName:   a.displayName(person),
		Occurrences:   len(hits),
		AvgDistance:   avg,
		MinDistance:   best.Distance,
		WeightedScore: avg*a.AvgWeight + best.Distance*a.MinWeight - float64(len(hits))*a.OccurrenceWeight,
		Region:        best,
	}
}

func (a *Aggregator) displayName(person string) string {
	if a.Names != nil {
		return a.Names.DisplayName(person)
	}
	return strings.ReplaceAll(person, "_", " ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
