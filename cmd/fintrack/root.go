package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kislikjeka/fintrack/internal/infra/memory"
	"github.com/kislikjeka/fintrack/internal/module/export"
	"github.com/kislikjeka/fintrack/internal/transport/backendapi"
	"github.com/kislikjeka/fintrack/internal/transport/httpapi"
	"github.com/kislikjeka/fintrack/internal/transport/httpapi/handler"
	"github.com/kislikjeka/fintrack/pkg/config"
	"github.com/kislikjeka/fintrack/pkg/logger"
	"github.com/kislikjeka/fintrack/pkg/money"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "fintrack",
		Short:        "Personal and shared finance tracker",
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newMockAPICmd(),
		newSummaryCmd(),
		newExportCmd(),
	)
	return root
}

// setup loads configuration and builds the logger; logs go to the command's stderr
func setup(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.Env, cmd.ErrOrStderr()), nil
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("Starting fintrack API server", "env", cfg.Env, "port", cfg.Port, "data_source", cfg.DataSource)

			a, err := newApp(ctx, cfg, log, cfg.TransactionLimit)
			if err != nil {
				return err
			}
			defer a.Close()

			// A failed first load is shown on the dashboard; POST /reload retries it
			if err := a.svc.Load(ctx); err != nil {
				log.Warn("Initial load failed", "error", err)
			}

			r := httpapi.NewRouter(httpapi.Config{
				Logger:           log,
				AllowedOrigins:   cfg.AllowedOrigins,
				RateLimitRPS:     cfg.RateLimitRPS,
				RateLimitBurst:   cfg.RateLimitBurst,
				DashboardHandler: handler.NewDashboardHandler(a.svc),
				DialogHandler:    handler.NewDialogHandler(a.svc),
				ExportHandler:    handler.NewExportHandler(a.svc),
				HealthHandler:    handler.NewHealthHandler(a.checks),
			})

			return listenAndServe(ctx, log, ":"+cfg.Port, r)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

func newMockAPICmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "mock-api",
		Short: "Run a finance API backed by seed data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.MockAPIPort = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			src, err := memory.NewFromFile(cfg.SeedFile, log)
			if err != nil {
				return fmt.Errorf("failed to load seed data: %w", err)
			}

			log.Info("Starting mock finance API", "port", cfg.MockAPIPort)
			return listenAndServe(ctx, log, ":"+cfg.MockAPIPort, backendapi.NewServer(src, log).Router())
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides MOCK_API_PORT)")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print balances, lending totals and income against expenses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, log, 0)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.svc.Load(cmd.Context()); err != nil {
				return err
			}

			return printSummary(cmd.OutOrStdout(), a.svc.View().Overview, money.Formatter{Symbol: cfg.CurrencySymbol})
		},
	}
}

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:       "export [transactions|accounts]",
		Short:     "Write transactions or accounts as CSV",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"transactions", "accounts"},
		RunE: func(cmd *cobra.Command, args []string) error {
			what := "transactions"
			if len(args) == 1 {
				what = args[0]
			}

			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, log, 0)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.svc.Load(cmd.Context()); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if what == "accounts" {
				err = export.WriteAccounts(w, a.svc.Accounts())
			} else {
				err = export.WriteTransactions(w, a.svc.Transactions())
			}
			if err != nil {
				return err
			}

			if output != "" && output != "-" {
				log.Info("Export written", "file", output, "kind", what)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// listenAndServe serves until ctx is cancelled, then shuts down gracefully
func listenAndServe(ctx context.Context, log *logger.Logger, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}
