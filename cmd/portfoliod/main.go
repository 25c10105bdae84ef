package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	"github.com/earnview/portfolio/internal/api"
	"github.com/earnview/portfolio/internal/balance"
	"github.com/earnview/portfolio/internal/catalog"
	"github.com/earnview/portfolio/internal/config"
	"github.com/earnview/portfolio/internal/database"
	"github.com/earnview/portfolio/internal/domain"
	"github.com/earnview/portfolio/internal/export"
	"github.com/earnview/portfolio/internal/market"
	"github.com/earnview/portfolio/internal/portfolio"
	"github.com/earnview/portfolio/internal/snapshot"
	"github.com/earnview/portfolio/internal/vault"
	"github.com/earnview/portfolio/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// defaultCoinIDs maps market data provider coin ids to canonical asset
// identifiers for the assets the catalog tracks on mainnet.
var defaultCoinIDs = map[string]domain.AssetID{
	"ethereum":        domain.NativeAssetID("ethereum", "mainnet"),
	"usd-coin":        domain.TokenAssetID("ethereum", "mainnet", domain.ContractTypeERC20, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
	"dai":             domain.TokenAssetID("ethereum", "mainnet", domain.ContractTypeERC20, "0x6B175474E89094C44Da98b954EedeAC495271d0F"),
	"weth":            domain.TokenAssetID("ethereum", "mainnet", domain.ContractTypeERC20, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
	"wrapped-bitcoin": domain.TokenAssetID("ethereum", "mainnet", domain.ContractTypeERC20, "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"),
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "portfoliod",
		Usage: "portfolio state and derivation service",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API and background workers",
				Action: func(c *cli.Context) error {
					return runServe(c.Context, stop)
				},
			},
			{
				Name:  "snapshot",
				Usage: "generate one snapshot per configured account and exit",
				Action: func(c *cli.Context) error {
					return runSnapshot(c.Context)
				},
			},
			{
				Name:  "export",
				Usage: "derive current views and export them to the configured writers",
				Action: func(c *cli.Context) error {
					return runExport(c.Context)
				},
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// services holds the wired dependency graph shared by all commands.
type services struct {
	cfg       config.Config
	pool      *pgxpool.Pool
	market    *market.Service
	yields    *vault.Client
	portfolio *portfolio.Service
	snapshots *snapshot.Service
}

func (s *services) Close() {
	s.pool.Close()
}

func bootstrap(ctx context.Context) (*services, error) {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	migrationsSub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	// Asset catalog: load once at startup, per-asset updates merge later.
	catalogSvc := catalog.NewService(catalog.NewClient(cfg.AssetAPIURL), catalog.NewStore())
	snap, err := catalogSvc.LoadAll(ctx, cfg.Network)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("loading asset catalog: %w", err)
	}
	catalogSvc.Store().Upsert(snap)
	slog.Info("asset catalog loaded", "network", cfg.Network, "assets", catalogSvc.Store().Len())

	marketClient := market.NewClient(cfg.MarketAPIURL, defaultCoinIDs, cfg.MarketRatePerSecond, cfg.MarketRetryMax, cfg.MarketRetryBaseDelay)
	marketSvc := market.NewService(marketClient, market.NewStore(cfg.MarketTTL))

	yieldClient := vault.NewClient(cfg.EarnAPIURL)
	balanceClient := balance.NewClient(cfg.BalanceAPIURL, cfg.BalanceRetryMax, cfg.BalanceRetryDelay)

	portfolioSvc := portfolio.NewService(catalogSvc.Store(), marketSvc.Store(), balanceClient, yieldClient)

	snapshotRepo := snapshot.NewPgRepository(pool)
	snapshotSvc := snapshot.NewService(portfolioSvc, snapshotRepo)

	for _, account := range cfg.Accounts {
		if _, err := snapshotRepo.EnsureAccount(ctx, account, ""); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensuring account %s: %w", account, err)
		}
	}

	return &services{
		cfg:       cfg,
		pool:      pool,
		market:    marketSvc,
		yields:    yieldClient,
		portfolio: portfolioSvc,
		snapshots: snapshotSvc,
	}, nil
}

// buildExporter wires the configured report writers, or returns nil when
// no export destination is configured.
func buildExporter(ctx context.Context, cfg config.Config) (*export.Service, error) {
	var writers []export.ReportWriter

	if cfg.XLSXPath != "" {
		writers = append(writers, export.NewXLSXWriter(cfg.XLSXPath))
	}
	if cfg.SpreadsheetID != "" && cfg.GoogleCredentials != "" {
		sheetsWriter, err := export.NewSheetsWriter(ctx, cfg.SpreadsheetID, cfg.GoogleCredentials)
		if err != nil {
			return nil, fmt.Errorf("creating sheets writer: %w", err)
		}
		writers = append(writers, sheetsWriter)
	}

	if len(writers) == 0 {
		return nil, nil
	}
	return export.NewService(writers...), nil
}

func runServe(ctx context.Context, stop context.CancelFunc) error {
	svcs, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer svcs.Close()
	cfg := svcs.cfg

	marketWorker := worker.NewMarketWorker(svcs.market, svcs.yields, cfg.MarketRefreshEvery)
	go marketWorker.Run(ctx)

	exporter, err := buildExporter(ctx, cfg)
	if err != nil {
		return err
	}

	var hook worker.AfterSnapshotHook
	if exporter != nil {
		hook = exporter
	}
	if len(cfg.Accounts) > 0 {
		snapshotWorker := worker.NewSnapshotWorker(svcs.snapshots, cfg.Accounts, cfg.SnapshotEvery, hook)
		go snapshotWorker.Run(ctx)
	} else {
		slog.Warn("no accounts configured, snapshot worker disabled")
	}

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, generate endpoint is unprotected")
	}

	defaultAccount := ""
	if len(cfg.Accounts) > 0 {
		defaultAccount = cfg.Accounts[0]
	}

	srv := api.NewServer(cfg.HTTPPort, svcs.snapshots, svcs.portfolio, defaultAccount, cfg.AdminAPIKey)

	go func() {
		slog.Info("HTTP server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func runSnapshot(ctx context.Context) error {
	svcs, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer svcs.Close()

	if err := refreshCaches(ctx, svcs); err != nil {
		return err
	}

	now := time.Now().UTC()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	for _, account := range svcs.cfg.Accounts {
		if _, err := svcs.snapshots.Generate(ctx, account, date); err != nil {
			return fmt.Errorf("generating snapshot for %s: %w", account, err)
		}
		slog.Info("snapshot generated", "account", account, "date", date.Format("2006-01-02"))
	}
	return nil
}

func runExport(ctx context.Context) error {
	svcs, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer svcs.Close()

	exporter, err := buildExporter(ctx, svcs.cfg)
	if err != nil {
		return err
	}
	if exporter == nil {
		return fmt.Errorf("no export destination configured")
	}

	if err := refreshCaches(ctx, svcs); err != nil {
		return err
	}

	for _, account := range svcs.cfg.Accounts {
		view, err := svcs.portfolio.Refresh(ctx, account)
		if err != nil {
			return fmt.Errorf("deriving view for %s: %w", account, err)
		}
		if err := exporter.Export(ctx, view); err != nil {
			return fmt.Errorf("exporting view for %s: %w", account, err)
		}
		slog.Info("view exported", "account", account)
	}
	return nil
}

func refreshCaches(ctx context.Context, svcs *services) error {
	if err := svcs.market.Refresh(ctx); err != nil {
		return fmt.Errorf("refreshing market data: %w", err)
	}
	if err := svcs.yields.Refresh(ctx); err != nil {
		return fmt.Errorf("refreshing vault metrics: %w", err)
	}
	return nil
}
