package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/blitzdraft/go/internal/dbconfig"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/autopick"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/board"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/bot"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/events"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/gateway"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/results"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/room"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/store"
	"github.com/mcdev12/blitzdraft/go/internal/models"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg := loadConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := board.LoadPool(cfg.PlayerPoolPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.PlayerPoolPath).Msg("failed to load player pool")
	}

	clock := clockwork.NewRealClock()
	connectionManager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())

	deps := room.Deps{
		Clock:       clock,
		Broadcaster: connectionManager,
		Strategy:    autopick.NewBestPickStrategy(),
		Bots:        bot.NewController(clock, cfg.BotDelay),
	}

	var redisClient *redis.Client
	var snapshots *store.RedisStore
	if cfg.RedisEnabled {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to Redis")
		}
		snapshots = store.NewRedisStore(redisClient)
		deps.Snapshots = snapshots
	}

	var pgPool *pgxpool.Pool
	if cfg.DBEnabled {
		dbCfg := dbconfig.NewConfigFromEnv()
		pgPool, err = pgxpool.New(ctx, dbCfg.DSN())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create database pool")
		}
		if err := pgPool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ping database")
		}
		deps.Results = results.NewRepository(pgPool)
	}

	var publisher *events.JetStreamPublisher
	if cfg.NATSEnabled {
		jsCfg := events.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATSURL
		publisher, err = events.NewJetStreamPublisher(jsCfg)
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.NATSURL).Msg("failed to connect to NATS")
		}
		deps.Publisher = publisher
	}

	registry := room.NewRegistry(deps, room.Config{
		Retention:   cfg.Retention,
		FillTimeout: cfg.FillTimeout,
	})

	// Bring back any drafts that were live when the previous process died.
	if snapshots != nil {
		states, err := snapshots.LoadActiveStates(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load active draft snapshots")
		}
		for _, state := range states {
			if err := registry.Restore(ctx, state); err != nil {
				log.Error().Err(err).Str("room_id", state.RoomID).Msg("failed to restore draft room")
			}
		}
		log.Info().Int("rooms", len(states)).Msg("draft recovery complete")
	}

	// Board generation shares one seeded rng across start requests.
	var rngMu sync.Mutex
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	newBoard := func() (models.Board, error) {
		rngMu.Lock()
		defer rngMu.Unlock()
		return board.Generate(pool, rng), nil
	}

	mux := http.NewServeMux()
	gateway.NewWebSocketHandler(connectionManager, registry).RegisterRoutes(mux)
	gateway.NewDraftHandler(registry, newBoard).RegisterRoutes(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("draft room server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	// Room actors stop here; snapshots stay in Redis for the next boot.
	registry.Shutdown()
	cancel()

	if publisher != nil {
		publisher.Close()
	}
	if pgPool != nil {
		pgPool.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}

	log.Info().Msg("draft room server shutdown complete")
}
