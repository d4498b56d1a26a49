package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saeidalz13/seabattle/api"
	"github.com/saeidalz13/seabattle/db"
	"github.com/saeidalz13/seabattle/db/sqlc"
	"github.com/saeidalz13/seabattle/internal/config"
	mb "github.com/saeidalz13/seabattle/models/battleship"
	mc "github.com/saeidalz13/seabattle/models/connection"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.Stage == config.StageDev {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store     mb.Store = mb.NewMemoryStore()
		analytics api.MatchAnalytics
	)
	if cfg.Store == config.StorePostgres {
		conn := db.MustConnectToDb(cfg.DatabaseURL)
		defer conn.Close()

		serverIpNet, err := api.FindServerIpNet()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to find server address")
		}

		dbManager := sqlc.NewDbManager(sqlc.New(conn), serverIpNet)
		store = dbManager.Matches
		analytics = dbManager.Analytics
		log.Info().Str("server_ip", dbManager.Analytics.ServerIp().IPNet.IP.String()).Msg("using postgres store")
	}

	publisher := mb.NewChannelPublisher(cfg.EventBuffer, log.Logger)
	gameManager := mb.NewBattleshipGameManager(
		store,
		publisher,
		mb.WithLogger(log.Logger),
		mb.WithMaxMatchDuration(cfg.MaxMatchDuration),
	)
	sessionManager := mc.NewBattleshipSessionManager(cfg.MaxMatchDuration)

	server := api.NewServer(
		gameManager,
		sessionManager,
		api.WithPort(cfg.Port),
		api.WithStage(cfg.Stage),
		api.WithAnalytics(analytics),
		api.WithPlacementAttempts(cfg.PlacementShipAttempts, cfg.PlacementBoardAttempts),
	)

	go gameManager.ManageMatchExpiry(ctx, cfg.MatchSweepInterval)
	go sessionManager.CleanupPeriodically(ctx)
	go server.ForwardEvents(ctx, publisher.Events())

	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}
