package pipeline

import (
	"encoding/json"
	"time"
)

// Report summarises one migration run.
type Report struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Domains   int           `json:"domains"`
	Tables    []TableReport `json:"tables"`

	LinksRecoded int `json:"links_recoded"`
	PassThrough  int `json:"pass_through"`

	// Replacements counts distinct baseline links that replace legacy
	// links; ReplacementRecords counts the records written for them.
	Replacements       int `json:"replacements"`
	ReplacementRecords int `json:"replacement_records"`
	Skipped            int `json:"skipped"`

	ModeOverrides      int `json:"mode_overrides"`
	ClearanceOverrides int `json:"clearance_overrides"`

	Relationships int    `json:"relationships"`
	AuditLocation string `json:"audit_location,omitempty"`
}

// TableReport is the outcome for one table.
type TableReport struct {
	Name string `json:"name"`
	Role string `json:"role"`
	Rows int    `json:"rows"`
}

// JSON renders the report for the run log.
func (r *Report) JSON() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
