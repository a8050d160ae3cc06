package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/maggierui/listing-scanner-sub000/internal/cli"
	"github.com/maggierui/listing-scanner-sub000/internal/config"
	"github.com/maggierui/listing-scanner-sub000/internal/model"
	"github.com/maggierui/listing-scanner-sub000/internal/scanner"
	"github.com/maggierui/listing-scanner-sub000/internal/service"
	"github.com/maggierui/listing-scanner-sub000/internal/sheets"
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a scan across search phrases",
		Long: `Search the marketplace for each configured phrase, qualify sellers by
inventory composition, and record one fresh listing per qualifying seller.

Run against a saved search with --search-id, or ad hoc with --phrases and
--typical (an ad-hoc run is saved as a new search so its results can be
deduplicated on later runs).`,
		RunE: runScan,
	}

	// Flags
	cmd.Flags().Int64("search-id", 0, "Saved search to run")
	cmd.Flags().StringSlice("phrases", nil, "Search phrases for an ad-hoc scan")
	cmd.Flags().StringSlice("typical", nil, "Typical-inventory phrases for seller qualification")
	cmd.Flags().StringSlice("conditions", []string{"USED", "NEW_OTHER"}, "Acceptable condition codes")
	cmd.Flags().Int("feedback-threshold", 5000, "Skip sellers at or above this feedback score")
	cmd.Flags().String("name", "", "Name for the saved search created by an ad-hoc scan")
	cmd.Flags().Int("days", 0, "Dedup window in days (default 7)")
	cmd.Flags().Bool("export", false, "Export results to Google Sheets on completion")

	// Bind to viper
	_ = viper.BindPFlag("scan.days", cmd.Flags().Lookup("days"))
	_ = viper.BindPFlag("scan.export", cmd.Flags().Lookup("export"))

	return cmd
}

func runScan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	search, err := resolveSearch(cmd, store)
	if err != nil {
		return err
	}

	client, tokens, err := initMarketplaceClient()
	if err != nil {
		return fmt.Errorf("failed to initialize marketplace client: %w", err)
	}

	var exporter service.ResultExporter
	if viper.GetBool("scan.export") {
		sheetsCfg, cfgErr := config.LoadSheetsConfig()
		if cfgErr != nil {
			return fmt.Errorf("export requested but sheets configuration is incomplete: %w", cfgErr)
		}
		writer, writerErr := sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
		if writerErr != nil {
			return fmt.Errorf("failed to initialize sheets exporter: %w", writerErr)
		}
		exporter = writer
	}

	params := scanner.ScanParams{
		SearchID:          search.ID,
		SearchPhrases:     search.SearchPhrases,
		TypicalPhrases:    search.TypicalPhrases,
		ConditionCodes:    search.ConditionCodes,
		FeedbackThreshold: search.FeedbackThreshold,
		DedupWindowDays:   viper.GetInt("scan.days"),
	}

	orch := scanner.New(store, client, tokens, exporter)

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Scanning %q (%d phrases)", search.Name, len(search.SearchPhrases))))

	bar := cli.NewScanProgressBar(os.Stdout, len(search.SearchPhrases))
	orch.SetProgress(func(_ string) {
		_ = bar.Add(1)
	})

	start := time.Now()
	listings, err := orch.StartScan(ctx, params)
	_ = bar.Finish()
	if err != nil {
		fmt.Println(cli.FormatError(fmt.Sprintf("Scan failed: %v", err)))
		if len(listings) > 0 {
			fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("%d listings had been collected before the failure", len(listings))))
		}
		return err
	}

	printScanSummary(orch.State().Stats, listings, client.CallCount(), time.Since(start))
	return nil
}

// resolveSearch loads the saved search named by --search-id, or persists a
// new one from the ad-hoc flags.
func resolveSearch(cmd *cobra.Command, store service.Storage) (*model.SavedSearch, error) {
	ctx := cmd.Context()

	searchID, _ := cmd.Flags().GetInt64("search-id")
	if searchID > 0 {
		return store.GetSearch(ctx, searchID)
	}

	phrases, _ := cmd.Flags().GetStringSlice("phrases")
	typical, _ := cmd.Flags().GetStringSlice("typical")
	rawConditions, _ := cmd.Flags().GetStringSlice("conditions")
	threshold, _ := cmd.Flags().GetInt("feedback-threshold")
	name, _ := cmd.Flags().GetString("name")

	if len(phrases) == 0 {
		return nil, fmt.Errorf("either --search-id or --phrases is required")
	}

	conditions, err := parseConditionCodes(rawConditions)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = "ad-hoc " + time.Now().Format("2006-01-02 15:04:05")
	}

	search := model.SavedSearch{
		Name:              name,
		SearchPhrases:     phrases,
		TypicalPhrases:    typical,
		ConditionCodes:    conditions,
		FeedbackThreshold: threshold,
	}
	if err := search.Validate(); err != nil {
		return nil, err
	}

	id, err := store.SaveSearch(ctx, &search)
	if err != nil {
		return nil, err
	}
	search.ID = id

	slog.Info("Saved ad-hoc search", "id", id, "name", name)
	return &search, nil
}

func printScanSummary(stats model.ScanStats, listings []model.Listing, apiCalls int64, elapsed time.Duration) {
	content := fmt.Sprintf("  • New listings: %d\n", len(listings)) +
		fmt.Sprintf("  • Items fetched: %d\n", stats.ItemsFetched) +
		fmt.Sprintf("  • Sellers assessed: %d (excluded: %d, skipped by feedback: %d)\n",
			stats.SellersAssessed, stats.SellersExcluded, stats.SellersSkippedByFeedback) +
		fmt.Sprintf("  • Duplicates suppressed: %d\n", stats.Deduplicated) +
		fmt.Sprintf("  • Phrases failed: %d\n", stats.PhrasesFailed) +
		fmt.Sprintf("  • API calls: %d\n", apiCalls) +
		fmt.Sprintf("  • Time taken: %s", elapsed.Round(time.Second))

	fmt.Println(cli.RenderBox("Scan Complete", content))

	for _, listing := range listings {
		fmt.Printf("  %s %s | %s %.2f (%s)\n",
			cli.SuccessStyle.Render("•"),
			listing.Title,
			listing.Currency,
			listing.Price,
			cli.SubtleStyle.Render(listing.URL))
	}
}
