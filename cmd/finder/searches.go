package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maggierui/listing-scanner-sub000/internal/cli"
	"github.com/maggierui/listing-scanner-sub000/internal/common"
	"github.com/maggierui/listing-scanner-sub000/internal/model"
)

func searchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "searches",
		Short: "Manage saved searches",
		Long: `Create, inspect, and delete the saved searches that scans run against.

A saved search bundles the marketplace phrases to scan, the typical-inventory
phrases used to qualify sellers, a feedback-score ceiling, and the acceptable
item conditions.`,
	}

	cmd.AddCommand(searchesAddCmd())
	cmd.AddCommand(searchesListCmd())
	cmd.AddCommand(searchesShowCmd())
	cmd.AddCommand(searchesDeleteCmd())

	return cmd
}

func searchesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a saved search",
		RunE:  runSearchesAdd,
	}

	cmd.Flags().String("name", "", "Search name (required)")
	cmd.Flags().StringSlice("phrases", nil, "Search phrases (required)")
	cmd.Flags().StringSlice("typical", nil, "Typical-inventory phrases (required)")
	cmd.Flags().StringSlice("conditions", []string{"USED", "NEW_OTHER"}, "Acceptable condition codes")
	cmd.Flags().Int("feedback-threshold", 5000, "Skip sellers at or above this feedback score")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("phrases")
	_ = cmd.MarkFlagRequired("typical")

	return cmd
}

func runSearchesAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	name, _ := cmd.Flags().GetString("name")
	phrases, _ := cmd.Flags().GetStringSlice("phrases")
	typical, _ := cmd.Flags().GetStringSlice("typical")
	rawConditions, _ := cmd.Flags().GetStringSlice("conditions")
	threshold, _ := cmd.Flags().GetInt("feedback-threshold")

	conditions, err := parseConditionCodes(rawConditions)
	if err != nil {
		return err
	}

	search := model.SavedSearch{
		Name:              name,
		SearchPhrases:     phrases,
		TypicalPhrases:    typical,
		ConditionCodes:    conditions,
		FeedbackThreshold: threshold,
	}
	if err := search.Validate(); err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	id, err := store.SaveSearch(ctx, &search)
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Saved search %q (id %d)", name, id)))
	return nil
}

func searchesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved searches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			searches, err := store.ListSearches(ctx)
			if err != nil {
				return err
			}

			if len(searches) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No saved searches yet. Create one with 'finder searches add'."))
				return nil
			}

			fmt.Println(cli.FormatTitle("Saved Searches"))
			for _, search := range searches {
				fmt.Printf("  %s %s\n",
					cli.BoldStyle.Render(fmt.Sprintf("[%d]", search.ID)),
					search.Name)
				fmt.Printf("      phrases: %s\n", strings.Join(search.SearchPhrases, ", "))
				fmt.Printf("      %s\n",
					cli.SubtleStyle.Render(fmt.Sprintf("created %s", search.CreatedAt.Format("2006-01-02"))))
			}
			return nil
		},
	}
}

func searchesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one saved search and its result count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseSearchID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			search, err := store.GetSearch(ctx, id)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return fmt.Errorf("no saved search with id %d", id)
				}
				return err
			}

			results, err := store.AllResultsForSearch(ctx, id)
			if err != nil {
				return err
			}

			content := fmt.Sprintf("  • Phrases: %s\n", strings.Join(search.SearchPhrases, ", ")) +
				fmt.Sprintf("  • Typical inventory: %s\n", strings.Join(search.TypicalPhrases, ", ")) +
				fmt.Sprintf("  • Conditions: %s\n", strings.Join(search.ConditionCodes, ", ")) +
				fmt.Sprintf("  • Feedback threshold: %d\n", search.FeedbackThreshold) +
				fmt.Sprintf("  • Active results: %d\n", len(results)) +
				fmt.Sprintf("  • Created: %s", search.CreatedAt.Format("2006-01-02 15:04"))

			fmt.Println(cli.RenderBox(fmt.Sprintf("[%d] %s", search.ID, search.Name), content))
			return nil
		},
	}
}

func searchesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved search and its result mappings",
		Long: `Delete a saved search. Result mappings for the search are removed, but
the listings themselves stay in the ledger so other searches keep their
dedup history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseSearchID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteSearch(ctx, id); err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return fmt.Errorf("no saved search with id %d", id)
				}
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted search %d", id)))
			return nil
		},
	}
}

func parseSearchID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid search id %q", arg)
	}
	return id, nil
}
