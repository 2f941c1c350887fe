package container

import (
	"context"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/inazuma-gg/ladder-backend/internal/config"
	deliveryhttp "github.com/inazuma-gg/ladder-backend/internal/delivery/http"
	"github.com/inazuma-gg/ladder-backend/internal/delivery/http/handler"
	"github.com/inazuma-gg/ladder-backend/internal/infrastructure/database"
	"github.com/inazuma-gg/ladder-backend/internal/infrastructure/leaderboard"
	"github.com/inazuma-gg/ladder-backend/internal/infrastructure/presence"
	"github.com/inazuma-gg/ladder-backend/internal/infrastructure/pubsub"
	"github.com/inazuma-gg/ladder-backend/internal/infrastructure/server"
	"github.com/inazuma-gg/ladder-backend/internal/repository/postgres"
	"github.com/inazuma-gg/ladder-backend/internal/usecase/ladder"
	"github.com/inazuma-gg/ladder-backend/internal/usecase/matchmaking"
	"github.com/inazuma-gg/ladder-backend/internal/usecase/queue"
	"github.com/inazuma-gg/ladder-backend/internal/usecase/result"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger zerolog.Logger

	DB    *sqlx.DB
	Redis *goredis.Client

	Manager *matchmaking.Manager
	Janitor *queue.Janitor
	Sweeper *result.Sweeper

	Server *server.Server

	cancelBackground context.CancelFunc
}

// NewContainer creates and wires all dependencies
func NewContainer(cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, err
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, err
	}

	// Repositories
	profileRepo := postgres.NewProfileRepository(db)
	queueRepo := postgres.NewQueueRepository(db)
	matchRepo := postgres.NewMatchRepository(db)
	disputeRepo := postgres.NewDisputeRepository(db)

	// Redis-backed infrastructure
	publisher := pubsub.NewRedisPublisher(redisClient)
	queuePresence := presence.NewRedisPresence(redisClient, cfg.Matchmaking.HeartbeatTTL)
	ladderCache := leaderboard.NewRedisCache(redisClient)

	schedule := matchmaking.Schedule{
		AdjacentAfter: cfg.Matchmaking.AdjacentAfter,
		ExtendedAfter: cfg.Matchmaking.ExtendedAfter,
	}

	// Matchmaking: finders wake on queue events with a ticker fallback.
	source := matchmaking.MergeSources{
		matchmaking.TickerSource{Interval: cfg.Matchmaking.TickInterval},
		matchmaking.RedisSource{
			Client:  redisClient,
			Channel: queue.QueueChangedChannel,
			Logger:  logger,
		},
	}
	creator := matchmaking.NewCreator(matchRepo, logger)
	finder := matchmaking.NewFinder(queueRepo, matchRepo, creator, source, schedule, logger)
	manager := matchmaking.NewManager(finder, logger)

	// Usecases
	queueUsecase := queue.NewUsecase(queueRepo, profileRepo, manager, publisher, queuePresence, schedule, logger)
	reconciler := result.NewReconciler(matchRepo, profileRepo, disputeRepo, ladderCache, cfg.Matchmaking.ResultWindow, logger)
	ladderUsecase := ladder.NewUsecase(profileRepo, matchRepo, ladderCache, logger)

	janitor := queue.NewJanitor(queueRepo, queuePresence, manager, cfg.Matchmaking.JanitorInterval, logger)
	sweeper := result.NewSweeper(matchRepo, publisher, cfg.Matchmaking.ResultWindow, cfg.Matchmaking.SweepInterval, logger)

	// HTTP delivery
	queueHandler := handler.NewQueueHandler(queueUsecase)
	matchHandler := handler.NewMatchHandler(reconciler, ladderUsecase)
	ladderHandler := handler.NewLadderHandler(ladderUsecase)

	router := deliveryhttp.NewRouter(cfg.JWT.Secret, queueHandler, matchHandler, ladderHandler)
	srv := server.NewServer(&cfg.Server, router, logger)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Redis:   redisClient,
		Manager: manager,
		Janitor: janitor,
		Sweeper: sweeper,
		Server:  srv,
	}, nil
}

// StartBackground launches the janitor and sweeper loops.
func (c *Container) StartBackground() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelBackground = cancel
	go c.Janitor.Run(ctx)
	go c.Sweeper.Run(ctx)
}

// Close shuts down background loops and closes connections.
func (c *Container) Close() error {
	if c.cancelBackground != nil {
		c.cancelBackground()
	}
	c.Manager.StopAll()
	if err := c.Redis.Close(); err != nil {
		c.Logger.Warn().Err(err).Msg("failed to close redis client")
	}
	return c.DB.Close()
}
