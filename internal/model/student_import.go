package model

import "time"

// StudentImportRow is one line of a bulk student import.
type StudentImportRow struct {
	Line        int
	Email       string
	FullName    string
	IDNumber    string
	Phone       string
	DOB         *time.Time
	Nationality string
	City        string
}

// ImportOutcome classifies what happened to a row.
type ImportOutcome string

const (
	ImportCreated        ImportOutcome = "created"
	ImportCreatedNoEmail ImportOutcome = "created_email_failed"
	ImportSkipped        ImportOutcome = "skipped_existing"
	ImportFailed         ImportOutcome = "failed"
)

// ImportResult reports one row.
type ImportResult struct {
	Line    int           `json:"line"`
	Email   string        `json:"email"`
	Outcome ImportOutcome `json:"outcome"`
	Error   string        `json:"error,omitempty"`
}

// ImportReport summarizes a bulk import.
type ImportReport struct {
	Created int            `json:"created"`
	Skipped int            `json:"skipped"`
	Failed  int            `json:"failed"`
	Results []ImportResult `json:"results"`
}

// Add records a result and updates the counters.
func (r *ImportReport) Add(res ImportResult) {
	switch res.Outcome {
	case ImportCreated, ImportCreatedNoEmail:
		r.Created++
	case ImportSkipped:
		r.Skipped++
	case ImportFailed:
		r.Failed++
	}
	r.Results = append(r.Results, res)
}
