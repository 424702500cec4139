// Command walletboard runs the personal finance dashboard backend.
// It proxies the futures-account USDT balance of the configured
// exchange (Binance or Bybit), keeps a bounded on-disk history of
// balance snapshots and serves a small anonymous comment feed.
//
// Usage:
//
//	walletboard --config config.yaml
//	walletboard --setup
//
// Required environment variables:
//
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit: BYBIT_API_KEY, BYBIT_API_SECRET
//
// Missing credentials keep the server running, only the balance routes
// degrade to an error response. DATA_DIR redirects the persisted JSON
// files to a persistent volume.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/vadiminshakov/walletboard/config"
	"github.com/vadiminshakov/walletboard/internal/clients"
	"github.com/vadiminshakov/walletboard/internal/gateway"
	"github.com/vadiminshakov/walletboard/internal/setup"
	"github.com/vadiminshakov/walletboard/internal/storage/comments"
	"github.com/vadiminshakov/walletboard/internal/storage/history"
	"github.com/vadiminshakov/walletboard/internal/storage/snapshots"
	"github.com/vadiminshakov/walletboard/internal/web"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			logger.Warn("failed to load .env", zap.Error(err))
		}
	}

	cfg, err := config.Get()
	if err != nil {
		logger.Fatal("failed to get configuration", zap.Error(err))
	}

	if cfg.Setup {
		if err := setup.RunTUI(); err != nil {
			logger.Fatal("config wizard failed", zap.Error(err))
		}
		return
	}

	historyStore, err := history.NewStore(cfg.HistoryFile())
	if err != nil {
		logger.Fatal("failed to open balance history store", zap.Error(err))
	}

	commentStore, err := comments.NewStore(cfg.CommentsFile())
	if err != nil {
		logger.Fatal("failed to open comment store", zap.Error(err))
	}

	journal, err := snapshots.NewWALStore(cfg.SnapshotDir())
	if err != nil {
		// the live stream is an extra, the dashboard works without it
		logger.Warn("snapshot journal disabled", zap.Error(err))
		journal = nil
	} else {
		defer journal.Close()
	}

	gw := buildGateway(cfg, logger)

	var srv *web.Server
	if journal != nil {
		srv = web.NewServer(cfg.ListenAddr, logger, gw, historyStore, commentStore, journal)
	} else {
		srv = web.NewServer(cfg.ListenAddr, logger, gw, historyStore, commentStore, nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if len(cfg.TLSDomains) > 0 {
			return srv.StartWithAutoTLS(ctx, cfg.TLSDomains, cfg.TLSCacheDir)
		}
		return srv.Start(ctx)
	})

	logger.Info("dashboard started",
		zap.String("addr", cfg.ListenAddr),
		zap.String("platform", cfg.Platform),
		zap.String("data_dir", cfg.DataDir))

	if err := g.Wait(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func buildGateway(cfg config.Config, logger *zap.Logger) gateway.Gateway {
	switch cfg.Platform {
	case config.PlatformBybit:
		apiKey := os.Getenv("BYBIT_API_KEY")
		apiSecret := os.Getenv("BYBIT_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			logger.Warn("BYBIT_API_KEY and BYBIT_API_SECRET are not set, balance routes will report an error")
			return gateway.NewBybitGateway(nil)
		}
		return gateway.NewBybitGateway(clients.NewBybitClient(apiKey, apiSecret))
	default:
		apiKey := os.Getenv("BINANCE_API_KEY")
		apiSecret := os.Getenv("BINANCE_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			logger.Warn("BINANCE_API_KEY and BINANCE_API_SECRET are not set, balance routes will report an error")
			return gateway.NewBinanceGateway(nil)
		}
		return gateway.NewBinanceGateway(clients.NewBinanceFuturesClient(apiKey, apiSecret))
	}
}
