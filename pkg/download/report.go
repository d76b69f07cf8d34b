package download

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/pretty"
)

// Report is the JSON artifact summarizing one batch run.
type Report struct {
	RunID    string    `json:"run_id"`
	Contact  string    `json:"contact,omitempty"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Results  Results   `json:"results"`
}

// NewReport stamps a fresh report with a run ID and start time.
func NewReport(contact string) *Report {
	return &Report{
		RunID:   uuid.New().String(),
		Contact: contact,
		Started: time.Now().UTC(),
	}
}

// Finish records the end time and the batch outcome.
func (r *Report) Finish(results Results) {
	r.Finished = time.Now().UTC()
	r.Results = results
}

// WriteFile saves the report as formatted JSON.
func (r *Report) WriteFile(path string) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, pretty.Pretty(data), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
