package recognize

import "math"

// clusterByPosition collapses candidates describing the same face region
// into one representative each. Greedy pass: the first unused candidate
// seeds a cluster and absorbs every later unused candidate whose x/y
// percentages are both within tolerance of the seed. The representative
// is the absorbed candidate with the lowest distance.
func clusterByPosition(cands []Candidate, tolerance float64) []Candidate {
	used := make([]bool, len(cands))
	reps := make([]Candidate, 0, len(cands))

	for i, seed := range cands {
		if used[i] {
			continue
		}
		used[i] = true
		best := seed
		for j := i + 1; j < len(cands); j++ {
			if used[j] {
				continue
			}
			if math.Abs(cands[j].X-seed.X) <= tolerance && math.Abs(cands[j].Y-seed.Y) <= tolerance {
				used[j] = true
				if cands[j].Distance < best.Distance {
					best = cands[j]
				}
			}
		}
		reps = append(reps, best)
	}
	return reps
}
