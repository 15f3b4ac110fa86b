// Package admission drives an uploaded face image through validation,
// quota enforcement, extraction and persistence. Each image moves through
// a fixed sequence of states and always ends cleaned up, whatever the
// outcome.
package admission

// State is a stage of the admission pipeline.
type State string

const (
	StateReceived      State = "received"
	StateValidating    State = "validating"
	StateQuotaChecking State = "quota_checking"
	StateExtracting    State = "extracting"
	StatePersisting    State = "persisting"
	StateAdmitted      State = "admitted"
	StateRejected      State = "rejected"
	StateCleanedUp     State = "cleaned_up"
)

// Rejection reasons beyond the validation taxonomy.
const (
	ReasonPersonLimit      = "person_limit_reached"
	ReasonDailyLimit       = "daily_limit_reached"
	ReasonExtractionFailed = "extraction_failed"
	ReasonPersistFailed    = "persist_failed"
)

// Request identifies one uploaded image awaiting admission. ImagePath is
// a temporary file owned by the pipeline; it is deleted on every path.
type Request struct {
	ImagePath string
	Person    string
	Date      string // YYYY-MM-DD
	Domain    string
}

// Outcome is the terminal result of one admission.
type Outcome struct {
	State      State  // StateAdmitted or StateRejected
	Reason     string // set when rejected
	StoredPath string // set when admitted
}

// Admitted reports whether the image was persisted to the corpus.
func (o Outcome) Admitted() bool { return o.State == StateAdmitted }
