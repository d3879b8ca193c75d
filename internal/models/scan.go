package models

import "time"

// Scan statuses recorded in the ledger. Oversized files are removed
// without being scanned.
const (
	ScanStatusClean     = "clean"
	ScanStatusInfected  = "infected"
	ScanStatusError     = "error"
	ScanStatusOversized = "oversized"
)

// ScanRecord is the antivirus verdict for one uploaded file.
type ScanRecord struct {
	FileID      string    `json:"file_id"`
	Author      string    `json:"author"`
	Image       string    `json:"image"`
	Status      string    `json:"status"`
	Signature   string    `json:"signature,omitempty"`
	Quarantined string    `json:"quarantined,omitempty"`
	ScannedAt   time.Time `json:"scanned_at"`
}
