package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	httpDelivery "github.com/listmatch/backend/internal/delivery/http"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var productsFile string
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the matching API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if productsFile != "" {
				cfg.Files.Products = productsFile
			}
			if port != "" {
				cfg.Server.Port = port
			}

			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			setup, err := buildService(cmd.Context(), cfg, logger, cfg.Files.Products)
			if err != nil {
				return err
			}
			defer setup.close()

			handler := httpDelivery.NewHandler(setup.service, logger)
			router := httpDelivery.SetupRouter(cfg, handler, setup.metrics, logger)

			server := &http.Server{
				Addr:              ":" + cfg.Server.Port,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      30 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.ListenAndServe()
			}()
			logger.Info("server listening",
				"address", server.Addr,
				"environment", cfg.Server.Environment,
				"cache", cfg.Cache.Type)

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve: %w", err)
				}
				return nil
			case <-cmd.Context().Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&productsFile, "products_file", "", "Products file, one JSON object per line (default from config)")
	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (default from config)")

	return cmd
}
