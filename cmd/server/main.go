package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shoukanhq/shoukan-server-go/internal/catalog"
	"github.com/shoukanhq/shoukan-server-go/internal/config"
	"github.com/shoukanhq/shoukan-server-go/internal/game"
	"github.com/shoukanhq/shoukan-server-go/internal/locale"
	"github.com/shoukanhq/shoukan-server-go/internal/registry"
	"github.com/shoukanhq/shoukan-server-go/internal/repository"
	"github.com/shoukanhq/shoukan-server-go/internal/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting shoukan server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	db, err := repository.NewDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	cards, err := catalog.Load(cfg.Catalog.CardsPath)
	if err != nil {
		logger.Fatal("failed to load card catalog", zap.Error(err))
	}
	logger.Info("card catalog loaded", zap.Int("templates", cards.Len()))

	bundle, err := locale.LoadBundle(cfg.Catalog.LocalePath)
	if err != nil {
		logger.Warn("failed to load locale bundle, using defaults", zap.Error(err))
		bundle = locale.Default()
	}

	var matchRegistry game.MatchRegistry
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		matchRegistry = registry.NewRedisRegistry(rdb, 0)
		logger.Info("redis match registry initialized", zap.String("address", cfg.Redis.Address))
	} else {
		matchRegistry = registry.NewMemoryRegistry()
		logger.Info("in-memory match registry initialized")
	}

	sessionMgr := server.NewSessionManager(
		repository.NewAccountRepository(db),
		cfg.Server.SessionTTL,
		logger,
	)
	go sessionMgr.CleanupExpired(ctx)
	logger.Info("session manager initialized", zap.Duration("session_ttl", cfg.Server.SessionTTL))

	gateway := server.NewGateway(nil, sessionMgr, bundle, logger)

	engine := game.NewShoukanEngine(
		game.Ports{
			Decks:   repository.NewDeckRepository(db, cards),
			Channel: gateway,
			Locale:  bundle,
			Reports: repository.NewReportStore(db),
		},
		matchRegistry,
		game.MatchConfig{
			Columns:         cfg.Match.Columns,
			HandCapacity:    cfg.Match.HandCapacity,
			OpeningHand:     cfg.Match.OpeningHand,
			BaseHP:          cfg.Match.BaseHP,
			DeckMin:         cfg.Match.DeckMin,
			Revivals:        cfg.Match.Revivals,
			RevivalCooldown: cfg.Match.RevivalCooldown,
			TurnTimeout:     cfg.Match.TurnTimeout,
		},
		logger,
	)
	gateway.SetEngine(engine)
	logger.Info("match engine initialized",
		zap.Int("base_hp", cfg.Match.BaseHP),
		zap.Duration("turn_timeout", cfg.Match.TurnTimeout),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gateway.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: mux,
	}

	go func() {
		logger.Info("starting websocket gateway", zap.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Error("gateway server error", zap.Error(serveErr))
		}
	}()

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	sessionMgr.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("gateway shutdown error", zap.Error(err))
	}

	logger.Info("shoukan server stopped",
		zap.Int("active_matches", engine.ActiveMatches()),
	)
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
