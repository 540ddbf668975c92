package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/listmatch/backend/internal/domain"
	"github.com/listmatch/backend/internal/infrastructure/jsonl"
	"github.com/listmatch/backend/internal/usecase"
)

type fileFlags struct {
	products string
	listings string
	results  string
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var files fileFlags
	var skipMalformed bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a listings file against a products file and write results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("products_file") {
				cfg.Files.Products = files.products
			}
			if cmd.Flags().Changed("listings_file") {
				cfg.Files.Listings = files.listings
			}
			if cmd.Flags().Changed("results_file") {
				cfg.Files.Results = files.results
			}
			if cmd.Flags().Changed("skip-malformed") {
				cfg.Matching.SkipMalformed = skipMalformed
			}

			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			runID := uuid.NewString()
			logger = logger.With("run_id", runID)

			setup, err := buildService(cmd.Context(), cfg, logger, cfg.Files.Products)
			if err != nil {
				return err
			}
			defer setup.close()

			if err := routeListings(cmd.Context(), setup.service, cfg.Files.Listings, jsonl.ReadOptions{
				SkipMalformed: cfg.Matching.SkipMalformed,
				Logger:        logger,
			}); err != nil {
				return err
			}

			if err := jsonl.WriteResultsFile(cfg.Files.Results, setup.service.Results()); err != nil {
				return fmt.Errorf("write results: %w", err)
			}

			matched, unmatched := setup.service.Counts()
			logger.Info("run complete",
				"matched", matched,
				"unmatched", unmatched,
				"results", cfg.Files.Results)

			if !quiet {
				printMatchSummary(cmd.OutOrStdout(), setup.service, cfg.Files.Results, runID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&files.products, "products_file", "", "Products file, one JSON object per line (default from config)")
	cmd.Flags().StringVar(&files.listings, "listings_file", "", "Listings file, one JSON object per line (default from config)")
	cmd.Flags().StringVar(&files.results, "results_file", "", "Results output file (default from config)")
	cmd.Flags().BoolVar(&skipMalformed, "skip-malformed", false, "Skip malformed input lines instead of failing")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the summary table")

	return cmd
}

// routeListings streams every listing in path through the service.
func routeListings(ctx context.Context, service *usecase.ListingService, path string, opts jsonl.ReadOptions) error {
	err := jsonl.EachListingFile(ctx, path, opts, func(listing *domain.Listing) error {
		_, err := service.ProcessListing(ctx, listing)
		return err
	})
	if err != nil {
		return fmt.Errorf("process listings: %w", err)
	}
	return nil
}

func printMatchSummary(w io.Writer, service *usecase.ListingService, resultsPath, runID string) {
	type tally struct {
		products int
		listings int
	}
	byManufacturer := make(map[string]*tally)
	for _, p := range service.Products("") {
		t, ok := byManufacturer[p.Manufacturer]
		if !ok {
			t = &tally{}
			byManufacturer[p.Manufacturer] = t
		}
		t.products++
		t.listings += p.Listings
	}

	var rows [][]string
	var totalProducts, totalListings int
	for _, m := range service.Catalog().Manufacturers() {
		t := byManufacturer[m]
		rows = append(rows, []string{m, strconv.Itoa(t.products), strconv.Itoa(t.listings)})
		totalProducts += t.products
		totalListings += t.listings
	}

	fmt.Fprintln(w, renderTable(
		[]string{"Manufacturer", "Products", "Matched listings"},
		rows,
		[]string{"Total", strconv.Itoa(totalProducts), strconv.Itoa(totalListings)},
		[]columnAlignment{alignLeft, alignRight, alignRight},
	))

	_, unmatched := service.Counts()
	fmt.Fprintf(w, "Unmatched listings: %d\n", unmatched)
	fmt.Fprintf(w, "Results: %s\n", resultsPath)
	fmt.Fprintf(w, "Run: %s\n", runID)
}
