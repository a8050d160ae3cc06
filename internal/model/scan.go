package model

import "time"

// ScanStatus describes where a scan is in its lifecycle.
type ScanStatus string

// Scan lifecycle states. A process starts at StatusIdle; a completed or
// errored scan can be restarted, but idle is never re-entered.
const (
	StatusIdle      ScanStatus = "idle"
	StatusScanning  ScanStatus = "scanning"
	StatusCompleted ScanStatus = "completed"
	StatusError     ScanStatus = "error"
)

// ScanState is a point-in-time snapshot of the orchestrator's state. It is
// never persisted.
type ScanState struct {
	LastUpdated time.Time
	Status      ScanStatus
	Error       string
	Listings    []Listing
	Stats       ScanStats
}

// ScanStats counts what happened to candidate items during one scan.
type ScanStats struct {
	ItemsFetched             int
	DroppedCondition         int
	DroppedMissingSeller     int
	SellersSkippedByFeedback int
	SellersAssessed          int
	SellersExcluded          int
	Deduplicated             int
	PhrasesFailed            int
}

// Add accumulates per-phrase stats into a scan total.
func (s *ScanStats) Add(other ScanStats) {
	s.ItemsFetched += other.ItemsFetched
	s.DroppedCondition += other.DroppedCondition
	s.DroppedMissingSeller += other.DroppedMissingSeller
	s.SellersSkippedByFeedback += other.SellersSkippedByFeedback
	s.SellersAssessed += other.SellersAssessed
	s.SellersExcluded += other.SellersExcluded
	s.Deduplicated += other.Deduplicated
	s.PhrasesFailed += other.PhrasesFailed
}
