// Package engine is the HTTP client for the external face-recognition
// engine. The engine detects faces, computes embeddings and searches a
// reference corpus; this service never computes similarity itself.
package engine

// Point is a landmark coordinate in the engine's working image space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis-aligned bounding box (top-left corner plus size).
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Landmarks carries the facial landmark points reported by the detector.
type Landmarks struct {
	LeftEye  Point `json:"left_eye"`
	RightEye Point `json:"right_eye"`
}

// DetectedFace is one raw detection, in the engine's downscaled image
// space. It lives only for the duration of one request.
type DetectedFace struct {
	BBox       Box       `json:"bbox"`
	Confidence float64   `json:"confidence"`
	Landmarks  Landmarks `json:"landmarks"`
}

// ExtractResult is the response of the face extraction endpoint. The
// engine runs detection on a downscaled copy; Width and Height are the
// dimensions of that copy so callers can map boxes back to the original.
type ExtractResult struct {
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Faces  []DetectedFace `json:"faces"`
}

// MatchRow is one (reference image, distance, query face box) hit from a
// corpus search. Distance is a cosine distance; lower is more confident.
type MatchRow struct {
	Identity string  `json:"identity"` // path of the matched reference image
	Distance float64 `json:"distance"`
	SourceX  float64 `json:"source_x"`
	SourceY  float64 `json:"source_y"`
	SourceW  float64 `json:"source_w"`
	SourceH  float64 `json:"source_h"`
}

type findResponse struct {
	Matches []MatchRow `json:"matches"`
}
