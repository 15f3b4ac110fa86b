package faceval

// FilterBySize keeps only faces whose area is at least ratio of the
// largest face's area. This drops spurious small secondary detections
// while tolerating natural size variance among genuinely retained faces.
func FilterBySize(faces []ValidFace, ratio float64) []ValidFace {
	if len(faces) <= 1 {
		return faces
	}

	largest := faces[0].Area
	for _, face := range faces[1:] {
		if face.Area > largest {
			largest = face.Area
		}
	}

	minArea := largest * ratio
	kept := make([]ValidFace, 0, len(faces))
	for _, face := range faces {
		if face.Area >= minArea {
			kept = append(kept, face)
		}
	}
	return kept
}
