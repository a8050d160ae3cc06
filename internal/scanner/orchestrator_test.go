package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maggierui/listing-scanner-sub000/internal/common"
	"github.com/maggierui/listing-scanner-sub000/internal/ebay"
	"github.com/maggierui/listing-scanner-sub000/internal/model"
	"github.com/maggierui/listing-scanner-sub000/internal/service"
	"github.com/maggierui/listing-scanner-sub000/internal/sheets"
	"github.com/maggierui/listing-scanner-sub000/internal/testutil"
)

// failingStorage wraps a real ledger but fails result persistence.
type failingStorage struct {
	service.Storage
}

func (f *failingStorage) SaveScanResults(_ context.Context, _ int64, _ []model.Listing) error {
	return common.NewPersistenceError("save scan results", errors.New("disk I/O error"))
}

func scenarioClient() *ebay.MockClient {
	client := ebay.NewMockClient()
	client.SearchResults["jewelry lot"] = []service.ItemSummary{
		{ItemID: "v1|1|0", Title: "Jewelry lot A", Condition: "Used", Seller: "sellerA", FeedbackScore: 6000},
		{ItemID: "v1|2|0", Title: "Jewelry lot B", Condition: "Used", Seller: "sellerB", FeedbackScore: 300},
		{ItemID: "v1|3|0", Title: "Jewelry lot C", Condition: "Used", Seller: "sellerC", FeedbackScore: 800},
	}
	client.SellerInventory["sellerB"] = inventory(40, 5)
	client.SellerInventory["sellerC"] = inventory(50, 20)
	return client
}

func scanParamsFor(searchID int64) ScanParams {
	return ScanParams{
		SearchPhrases:     []string{"jewelry lot"},
		TypicalPhrases:    []string{"jewelry", "necklace"},
		ConditionCodes:    []string{"USED"},
		FeedbackThreshold: 5000,
		SearchID:          searchID,
	}
}

func TestStartScanCompletes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	searchID := testutil.SeedSearch(t, db)

	exporter := &sheets.MockExporter{Location: "sheet://scan-results"}
	o := New(db, scenarioClient(), &ebay.StaticTokenSource{AccessToken: "tok"}, exporter)

	listings, err := o.StartScan(context.Background(), scanParamsFor(searchID))
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "v1|2|0", listings[0].ItemID)

	state := o.State()
	assert.Equal(t, model.StatusCompleted, state.Status)
	assert.Empty(t, state.Error)
	assert.Len(t, state.Listings, 1)
	assert.False(t, state.LastUpdated.IsZero())

	// Results are persisted with their mapping.
	stored, err := db.AllResultsForSearch(context.Background(), searchID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "v1|2|0", stored[0].ItemID)

	// Export fires asynchronously after completion.
	require.Eventually(t, func() bool {
		return exporter.CallCount() == 1
	}, 2*time.Second, 10*time.Millisecond, "export was not invoked")
	assert.Len(t, exporter.Calls[0], 1)
}

func TestStartScanValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	o := New(db, ebay.NewMockClient(), &ebay.StaticTokenSource{AccessToken: "tok"}, nil)

	params := scanParamsFor(1)
	params.SearchPhrases = nil

	_, err := o.StartScan(context.Background(), params)
	require.Error(t, err)

	var valErr *common.ValidationError
	assert.True(t, errors.As(err, &valErr))

	// Rejected before any state mutation.
	assert.Equal(t, model.StatusIdle, o.State().Status)
}

func TestStartScanConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	searchID := testutil.SeedSearch(t, db)

	client := scenarioClient()
	started := make(chan struct{})
	proceed := make(chan struct{})
	var once sync.Once
	client.OnSearch = func(_ string) {
		once.Do(func() {
			close(started)
			<-proceed
		})
	}

	o := New(db, client, &ebay.StaticTokenSource{AccessToken: "tok"}, nil)

	firstDone := make(chan error, 1)
	go func() {
		_, err := o.StartScan(context.Background(), scanParamsFor(searchID))
		firstDone <- err
	}()

	<-started
	assert.Equal(t, model.StatusScanning, o.State().Status)

	_, err := o.StartScan(context.Background(), scanParamsFor(searchID))
	require.Error(t, err)

	var conflict *common.ConflictError
	assert.True(t, errors.As(err, &conflict))
	assert.True(t, errors.Is(err, common.ErrScanInProgress))

	// The first scan is untouched and still completes.
	assert.Equal(t, model.StatusScanning, o.State().Status)
	close(proceed)
	require.NoError(t, <-firstDone)
	assert.Equal(t, model.StatusCompleted, o.State().Status)

	// Terminal state accepts a new scan.
	_, err = o.StartScan(context.Background(), scanParamsFor(searchID))
	require.NoError(t, err)
}

func TestStartScanTokenFailureIsFatal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	searchID := testutil.SeedSearch(t, db)

	o := New(db, scenarioClient(), &ebay.StaticTokenSource{Err: errors.New("invalid credentials")}, nil)

	_, err := o.StartScan(context.Background(), scanParamsFor(searchID))
	require.Error(t, err)

	state := o.State()
	assert.Equal(t, model.StatusError, state.Status)
	assert.Contains(t, state.Error, "token")
}

func TestStartScanPhraseFailureContinues(t *testing.T) {
	db := testutil.SetupTestDB(t)
	searchID := testutil.SeedSearch(t, db)

	client := scenarioClient()
	client.SearchErrs = map[string]error{"broken phrase": errors.New("HTTP 500")}

	o := New(db, client, &ebay.StaticTokenSource{AccessToken: "tok"}, nil)

	params := scanParamsFor(searchID)
	params.SearchPhrases = []string{"broken phrase", "jewelry lot"}

	listings, err := o.StartScan(context.Background(), params)
	require.NoError(t, err, "a failed phrase must not fail the scan")
	assert.Len(t, listings, 1)

	state := o.State()
	assert.Equal(t, model.StatusCompleted, state.Status)
	assert.Equal(t, 1, state.Stats.PhrasesFailed)
}

func TestStartScanPersistenceFailureIsFatal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	searchID := testutil.SeedSearch(t, db)

	o := New(&failingStorage{Storage: db}, scenarioClient(), &ebay.StaticTokenSource{AccessToken: "tok"}, nil)

	_, err := o.StartScan(context.Background(), scanParamsFor(searchID))
	require.Error(t, err)
	assert.True(t, common.IsPersistence(err))

	state := o.State()
	assert.Equal(t, model.StatusError, state.Status)
	// Whatever aggregated before the failure is retained for inspection.
	assert.Len(t, state.Listings, 1)

	// The in-progress flag was released; a retry is possible.
	_, err = o.StartScan(context.Background(), scanParamsFor(searchID))
	require.Error(t, err)
	var conflict *common.ConflictError
	assert.False(t, errors.As(err, &conflict))
}

func TestStartScanDedupWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	searchID := testutil.SeedSearch(t, db)

	o := New(db, scenarioClient(), &ebay.StaticTokenSource{AccessToken: "tok"}, nil)

	first, err := o.StartScan(context.Background(), scanParamsFor(searchID))
	require.NoError(t, err)
	require.Len(t, first, 1)

	// The same item within the dedup window is not re-reported.
	second, err := o.StartScan(context.Background(), scanParamsFor(searchID))
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Equal(t, 1, o.State().Stats.Deduplicated)
}

func TestStartScanNoExportOnEmptyResult(t *testing.T) {
	db := testutil.SetupTestDB(t)
	searchID := testutil.SeedSearch(t, db)

	exporter := &sheets.MockExporter{}
	o := New(db, ebay.NewMockClient(), &ebay.StaticTokenSource{AccessToken: "tok"}, exporter)

	listings, err := o.StartScan(context.Background(), scanParamsFor(searchID))
	require.NoError(t, err)
	assert.Empty(t, listings)

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, exporter.CallCount(), "exporter must not run for an empty scan")
}

func TestStateReturnsCopy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	searchID := testutil.SeedSearch(t, db)

	o := New(db, scenarioClient(), &ebay.StaticTokenSource{AccessToken: "tok"}, nil)

	_, err := o.StartScan(context.Background(), scanParamsFor(searchID))
	require.NoError(t, err)

	snapshot := o.State()
	require.Len(t, snapshot.Listings, 1)
	snapshot.Listings[0].ItemID = "mutated"

	assert.Equal(t, "v1|2|0", o.State().Listings[0].ItemID)
}
