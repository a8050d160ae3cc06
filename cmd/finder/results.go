package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maggierui/listing-scanner-sub000/internal/cli"
	"github.com/maggierui/listing-scanner-sub000/internal/model"
)

func resultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "View and maintain recorded listings",
		RunE:  runResultsList,
	}

	cmd.Flags().Int64("search-id", 0, "Saved search whose results to show (required)")
	cmd.Flags().Int("days", 0, "Only show results seen within this many days")
	_ = cmd.MarkFlagRequired("search-id")

	cmd.AddCommand(resultsCleanupCmd())

	return cmd
}

func runResultsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	searchID, _ := cmd.Flags().GetInt64("search-id")
	days, _ := cmd.Flags().GetInt("days")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	var listings []model.Listing
	if days > 0 {
		listings, err = store.ExistingResultsForSearch(ctx, searchID, days)
	} else {
		listings, err = store.AllResultsForSearch(ctx, searchID)
	}
	if err != nil {
		return err
	}

	if len(listings) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No results recorded for this search."))
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("%d results", len(listings))))
	for _, listing := range listings {
		fmt.Printf("  %s %s | %s %.2f\n",
			cli.SuccessStyle.Render("•"),
			listing.Title,
			listing.Currency,
			listing.Price)
		fmt.Printf("      seller %s, first found %s\n",
			listing.Seller,
			listing.FirstFoundAt.Format("2006-01-02"))
		fmt.Printf("      %s\n", cli.SubtleStyle.Render(listing.URL))
	}
	return nil
}

func resultsCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Mark long-unseen listings inactive",
		Long: `Flag listings not seen for the given number of days as inactive. Nothing
is deleted; inactive listings drop out of result views but stay in the
ledger for deduplication.`,
		RunE: runResultsCleanup,
	}

	cmd.Flags().Int("older-than", 90, "Mark listings unseen for this many days")

	return cmd
}

func runResultsCleanup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	olderThan, _ := cmd.Flags().GetInt("older-than")
	if olderThan <= 0 {
		return fmt.Errorf("--older-than must be positive, got %d", olderThan)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	flagged, err := store.MarkStaleInactive(ctx, olderThan)
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Marked %d listings inactive (unseen for %d+ days)", flagged, olderThan)))
	return nil
}
