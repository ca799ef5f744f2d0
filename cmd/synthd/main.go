package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"synthd/config"
	"synthd/crypto"
	"synthd/engine"
	"synthd/observability"
	"synthd/observability/logging"
	telemetry "synthd/observability/otel"
	"synthd/oracle"
	"synthd/rpc"
	"synthd/storage"
	"synthd/token"
)

const genesisAppliedKey = "genesis/applied"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.toml", "path to synthd config")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.Setup("synthd", cfg.Environment)

	otlpEndpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	otlpHeaders := telemetry.ParseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	insecure := true
	if value := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			insecure = parsed
		}
	}
	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: "synthd",
		Environment: cfg.Environment,
		Endpoint:    otlpEndpoint,
		Insecure:    insecure,
		Headers:     otlpHeaders,
		Traces:      true,
		Metrics:     otlpEndpoint != "",
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if shutdownTelemetry != nil {
			_ = shutdownTelemetry(context.Background())
		}
	}()

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "synthd.db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	debtToken := token.NewDebtToken(cfg.DebtSymbol, storage.NewBalanceStore(db, cfg.DebtSymbol))
	minter, err := debtToken.IssueMinter()
	if err != nil {
		return fmt.Errorf("issue minter capability: %w", err)
	}

	ledgers := make([]token.Ledger, 0, len(cfg.Collateral))
	feeds := make([]oracle.PriceFeed, 0, len(cfg.Collateral))
	bySymbol := make(map[string]*token.Token, len(cfg.Collateral))
	for _, asset := range cfg.Collateral {
		ledger := token.NewToken(asset.Symbol, storage.NewBalanceStore(db, asset.Symbol))
		feed, err := buildFeed(cfg.Feeds[asset.Feed])
		if err != nil {
			return fmt.Errorf("feed %s: %w", asset.Feed, err)
		}
		ledgers = append(ledgers, ledger)
		feeds = append(feeds, observability.InstrumentFeed(asset.Symbol, feed))
		bySymbol[asset.Symbol] = ledger
	}

	if err := applyGenesis(db, cfg, bySymbol); err != nil {
		return fmt.Errorf("apply genesis allocations: %w", err)
	}

	custody := crypto.ModuleAddress(crypto.SynPrefix, "collateral-engine")
	eng, err := engine.NewEngine(custody, ledgers, feeds, minter)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	eng.SetState(storage.NewPositionStore(db))
	eng.SetEmitter(observability.NewEventRecorder(logger, cfg.DebtSymbol))

	authToken := strings.TrimSpace(os.Getenv("SYNTHD_RPC_TOKEN"))
	if authToken == "" {
		authToken = cfg.RPCAuthToken
	}
	server := rpc.NewServer(eng, authToken, logger)

	rpcServer := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:        cfg.MetricsAddress,
		Handler:     metricsMux,
		ReadTimeout: 15 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 2)
	go func() {
		logger.Info("rpc listening", slog.String("address", cfg.ListenAddress))
		errs <- rpcServer.ListenAndServe()
	}()
	go func() {
		logger.Info("metrics listening", slog.String("address", cfg.MetricsAddress))
		errs <- metricsServer.ListenAndServe()
	}()

	select {
	case <-stopCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rpcServer.Shutdown(shutdownCtx); err != nil {
			_ = rpcServer.Close()
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			_ = metricsServer.Close()
		}
		return nil
	case err := <-errs:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

func buildFeed(feedCfg config.FeedConfig) (oracle.PriceFeed, error) {
	switch strings.TrimSpace(feedCfg.Type) {
	case "static":
		price, ok := new(big.Int).SetString(strings.TrimSpace(feedCfg.Price), 10)
		if !ok {
			return nil, fmt.Errorf("invalid static price %q", feedCfg.Price)
		}
		return oracle.NewStaticFeed(price), nil
	case "http":
		client := &http.Client{Timeout: 10 * time.Second}
		return oracle.NewHTTPFeed(client, feedCfg.URL)
	default:
		return nil, fmt.Errorf("unknown feed type %q", feedCfg.Type)
	}
}

// applyGenesis credits configured balances exactly once per data directory.
func applyGenesis(db storage.Database, cfg *config.Config, ledgers map[string]*token.Token) error {
	applied, err := db.Has([]byte(genesisAppliedKey))
	if err != nil {
		return err
	}
	if applied {
		return nil
	}
	for _, alloc := range cfg.Genesis.Allocations {
		ledger, ok := ledgers[strings.TrimSpace(alloc.Token)]
		if !ok {
			return fmt.Errorf("allocation references unknown token %q", alloc.Token)
		}
		addr, err := crypto.DecodeAddress(strings.TrimSpace(alloc.Address))
		if err != nil {
			return fmt.Errorf("allocation address %q: %w", alloc.Address, err)
		}
		amount, ok := new(big.Int).SetString(strings.TrimSpace(alloc.Amount), 10)
		if !ok {
			return fmt.Errorf("allocation amount %q", alloc.Amount)
		}
		if amount.Sign() == 0 {
			continue
		}
		if err := ledger.Credit(addr, amount); err != nil {
			return err
		}
	}
	return db.Put([]byte(genesisAppliedKey), []byte{1})
}
