package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/listmatch/backend/config"
	"github.com/listmatch/backend/internal/domain"
)

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var productsFile string
	var manufacturer string

	cmd := &cobra.Command{
		Use:   "score <title>",
		Short: "Show how every candidate product scores against a listing title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if productsFile == "" {
				productsFile = cfg.Files.Products
			}
			if strings.TrimSpace(manufacturer) == "" {
				return errors.New("--manufacturer is required")
			}

			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			// Scoring records nothing, so there is nothing to cache.
			cfg.Cache.Type = config.CacheNone
			setup, err := buildService(cmd.Context(), cfg, logger, productsFile)
			if err != nil {
				return err
			}
			defer setup.close()

			title := strings.Join(args, " ")
			scores, err := setup.service.ScoreListing(cmd.Context(), &domain.ScoreRequest{
				Title:        title,
				Manufacturer: manufacturer,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(scores) == 0 {
				fmt.Fprintf(out, "No %s product matches %q\n", manufacturer, title)
				return nil
			}

			rows := make([][]string, 0, len(scores))
			for i, s := range scores {
				rows = append(rows, []string{strconv.Itoa(i + 1), s.ProductName, s.Model, s.Family, strconv.Itoa(s.Score)})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Product", "Model", "Family", "Score"},
				rows,
				nil,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&productsFile, "products_file", "", "Products file, one JSON object per line (default from config)")
	cmd.Flags().StringVarP(&manufacturer, "manufacturer", "m", "", "Listing manufacturer")

	return cmd
}
