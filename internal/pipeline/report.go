package pipeline

import "bkcnorm/internal/booking"

// Stage names used in outcomes.
const (
	StageComplete  = "complete"
	StageDate      = "date"
	StageContainer = "container"
	StageUOM       = "uom"
	StageWeight    = "gross_weight"
	StagePort      = "port"
	StageDerive    = "derive"
)

// Status is the per-field outcome of a stage.
type Status string

const (
	StatusOK       Status = "ok"
	StatusFallback Status = "fallback"
	StatusSkipped  Status = "skipped"
)

// Outcome records what one stage did to one field.
type Outcome struct {
	Stage  string `json:"stage"`
	Field  string `json:"field"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Report collects the outcomes of one pipeline run in stage order.
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
}

func (r *Report) add(stage, field string, status Status, detail string) {
	r.Outcomes = append(r.Outcomes, Outcome{Stage: stage, Field: field, Status: status, Detail: detail})
}

// Fallbacks returns the outcomes where a substitute value was used.
func (r *Report) Fallbacks() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFallback {
			out = append(out, o)
		}
	}
	return out
}

// Outcome returns the last outcome a stage recorded for field.
func (r *Report) Outcome(stage, field string) (Outcome, bool) {
	for i := len(r.Outcomes) - 1; i >= 0; i-- {
		o := r.Outcomes[i]
		if o.Stage == stage && o.Field == field {
			return o, true
		}
	}
	return Outcome{}, false
}

// Result is the output of one pipeline run.
type Result struct {
	// Record holds the normalized fields under their internal names.
	Record *booking.Record `json:"-"`
	// Payload is Record with external names and stringified numbers.
	Payload *booking.Record `json:"payload"`
	Report  Report          `json:"report"`
}

// FallbackColumn is the trailing export column listing the fields that fell back.
const FallbackColumn = "fallback_fields"

// Header returns the export header row for columns.
func Header(columns []string) []string {
	out := make([]string, 0, len(columns)+1)
	out = append(out, columns...)
	return append(out, FallbackColumn)
}

// Row renders Payload as one export row for the given columns, followed by the
// comma-separated list of fields that fell back.
func (r *Result) Row(columns []string) []string {
	row := make([]string, 0, len(columns)+1)
	for _, col := range columns {
		row = append(row, r.Payload.GetString(col))
	}
	return append(row, r.FallbackFields())
}

// FallbackFields lists the fields with a fallback outcome, in order, without
// duplicates.
func (r *Result) FallbackFields() string {
	seen := make(map[string]bool)
	var out string
	for _, o := range r.Report.Fallbacks() {
		if seen[o.Field] {
			continue
		}
		seen[o.Field] = true
		if out != "" {
			out += ", "
		}
		out += o.Field
	}
	return out
}
