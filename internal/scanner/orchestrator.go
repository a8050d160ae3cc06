// Package scanner implements the scan orchestration and seller-qualification
// engine.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/maggierui/listing-scanner-sub000/internal/common"
	"github.com/maggierui/listing-scanner-sub000/internal/model"
	"github.com/maggierui/listing-scanner-sub000/internal/service"
)

// defaultDedupWindowDays suppresses re-reporting items seen this recently.
const defaultDedupWindowDays = 7

// Orchestrator drives scans across all configured phrases, holds the
// single-flight scan state, and persists qualifying results.
type Orchestrator struct {
	storage  service.Storage
	fetcher  *Fetcher
	tokens   service.TokenSource
	exporter service.ResultExporter
	logger   *slog.Logger

	// progress, when set, is invoked after each phrase finishes.
	progress func(phrase string)

	mu         sync.Mutex
	inProgress bool
	state      model.ScanState
}

// New creates a scan orchestrator. exporter may be nil to disable the
// post-completion export hook.
func New(storage service.Storage, client service.MarketplaceClient, tokens service.TokenSource, exporter service.ResultExporter) *Orchestrator {
	qualifier := NewQualifier(client)
	return &Orchestrator{
		storage:  storage,
		fetcher:  NewFetcher(client, qualifier),
		tokens:   tokens,
		exporter: exporter,
		logger:   slog.Default().With("component", "orchestrator"),
		state:    model.ScanState{Status: model.StatusIdle},
	}
}

// SetProgress registers a callback fired after each phrase completes,
// whether the phrase succeeded or failed. Must be set before StartScan.
func (o *Orchestrator) SetProgress(fn func(phrase string)) {
	o.progress = fn
}

// State returns a read-only snapshot of the current scan state.
func (o *Orchestrator) State() model.ScanState {
	o.mu.Lock()
	defer o.mu.Unlock()

	snapshot := o.state
	snapshot.Listings = make([]model.Listing, len(o.state.Listings))
	copy(snapshot.Listings, o.state.Listings)
	return snapshot
}

// StartScan runs one full scan. A second call while a scan is running is
// rejected synchronously with ConflictError; malformed parameters are
// rejected with ValidationError before any state change. Marketplace
// failures are contained per phrase; storage failures are scan-fatal.
func (o *Orchestrator) StartScan(ctx context.Context, params ScanParams) ([]model.Listing, error) {
	if err := params.Validate(); err != nil {
		return nil, common.NewValidationError(err)
	}

	if err := o.acquire(); err != nil {
		return nil, err
	}
	defer o.release()

	o.logger.Info("Scan started",
		"phrases", len(params.SearchPhrases),
		"search_id", params.SearchID,
		"feedback_threshold", params.FeedbackThreshold)

	// The token provider is re-invoked every scan; without a token no
	// marketplace call can succeed, so failure here fails the whole scan.
	if _, err := o.tokens.Token(ctx); err != nil {
		return nil, o.fail(nil, fmt.Errorf("token exchange failed: %w", err))
	}

	window := params.DedupWindowDays
	if window <= 0 {
		window = defaultDedupWindowDays
	}

	recent, err := o.storage.RecentItemIDs(ctx, window)
	if err != nil {
		return nil, o.fail(nil, err)
	}

	var (
		aggregated []model.Listing
		stats      model.ScanStats
		seen       = make(map[string]bool)
	)

	for _, phrase := range params.SearchPhrases {
		listings, phraseStats, fetchErr := o.fetcher.FetchForPhrase(ctx, phrase, params)
		stats.Add(phraseStats)
		if o.progress != nil {
			o.progress(phrase)
		}
		if fetchErr != nil {
			// A failed phrase contributes zero listings; the scan goes on.
			stats.PhrasesFailed++
			o.logger.Error("Phrase fetch failed",
				"phrase", phrase,
				"error", fetchErr)
			continue
		}

		for _, listing := range listings {
			if recent[listing.ItemID] || seen[listing.ItemID] {
				stats.Deduplicated++
				continue
			}
			seen[listing.ItemID] = true
			aggregated = append(aggregated, listing)
		}
	}

	if err := o.storage.SaveScanResults(ctx, params.SearchID, aggregated); err != nil {
		return aggregated, o.fail(aggregated, err)
	}

	o.complete(aggregated, stats)

	o.logger.Info("Scan completed",
		"listings", len(aggregated),
		"phrases_failed", stats.PhrasesFailed,
		"sellers_assessed", stats.SellersAssessed,
		"deduplicated", stats.Deduplicated)

	if len(aggregated) > 0 && o.exporter != nil {
		go o.export(aggregated)
	}

	return aggregated, nil
}

// acquire transitions idle/terminal state to scanning, enforcing the
// single-flight guard.
func (o *Orchestrator) acquire() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.inProgress {
		return &common.ConflictError{Message: "scan already in progress"}
	}

	o.inProgress = true
	o.state = model.ScanState{
		Status:      model.StatusScanning,
		LastUpdated: time.Now(),
	}
	return nil
}

// release clears the in-progress flag so a subsequent scan can start.
func (o *Orchestrator) release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inProgress = false
}

// fail records a scan-fatal error, retaining whatever aggregated before it.
func (o *Orchestrator) fail(aggregated []model.Listing, err error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state.Status = model.StatusError
	o.state.Error = err.Error()
	o.state.Listings = aggregated
	o.state.LastUpdated = time.Now()

	return err
}

func (o *Orchestrator) complete(listings []model.Listing, stats model.ScanStats) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state.Status = model.StatusCompleted
	o.state.Listings = listings
	o.state.Stats = stats
	o.state.LastUpdated = time.Now()
}

// export hands the final listing list to the export collaborator.
// Fire-and-forget: failures are logged, never propagated.
func (o *Orchestrator) export(listings []model.Listing) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	label := time.Now().Format("2006-01-02 15:04")
	location, err := o.exporter.Export(ctx, listings, label)
	if err != nil {
		o.logger.Warn("Result export failed",
			"label", label,
			"error", err)
		return
	}

	o.logger.Info("Results exported",
		"label", label,
		"location", location)
}
