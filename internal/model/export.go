package model

import "time"

// HistoryExport is the top-level JSON structure for the CLI history export.
type HistoryExport struct {
	ExportedAt  time.Time      `json:"exported_at"`
	Count       int            `json:"count"`
	Assessments []HistoryEntry `json:"assessments"`
}
