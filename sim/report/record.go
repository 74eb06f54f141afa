// Package report provides stage execution records and run summaries.
// This package has no dependencies on sim/ — it stores pure data types.
package report

// Outcome is the result of one stage invocation.
type Outcome string

const (
	// OutcomeCompleted means the stage consumed its processing time.
	OutcomeCompleted Outcome = "completed"
	// OutcomeDeferred means a machine failed or was unavailable; the material did not advance.
	OutcomeDeferred Outcome = "deferred"
)

// StageRecord captures a single stage invocation for one material.
type StageRecord struct {
	RunID        string
	Material     string
	Stage        string
	StartTime    float64
	EndTime      float64 // equals StartTime for deferred invocations
	AdjustedTime float64 // adjusted operation time for the stage kind
	Outcome      Outcome
	BlockedBy    string // resource that failed or was unavailable (deferred only)
}

// Duration returns EndTime - StartTime.
func (r StageRecord) Duration() float64 {
	return r.EndTime - r.StartTime
}

// Sink receives stage records as they are produced.
type Sink interface {
	Record(StageRecord)
}

// Recorder is a Sink that keeps every record in arrival order.
type Recorder struct {
	Records []StageRecord
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{Records: make([]StageRecord, 0)}
}

// Record appends a stage record.
func (r *Recorder) Record(rec StageRecord) {
	r.Records = append(r.Records, rec)
}

// ForStage returns the records of one stage, in arrival order.
func (r *Recorder) ForStage(stage string) []StageRecord {
	out := make([]StageRecord, 0)
	for _, rec := range r.Records {
		if rec.Stage == stage {
			out = append(out, rec)
		}
	}
	return out
}

// Reset drops all recorded entries.
func (r *Recorder) Reset() {
	r.Records = r.Records[:0]
}
