// Package setup constructs the full dependency graph: config in, router out.
package setup

import (
	"context"

	"github.com/14ChannelBBS/Qua/internal/config"
	"github.com/14ChannelBBS/Qua/internal/handler"
	"github.com/14ChannelBBS/Qua/internal/legacy"
	"github.com/14ChannelBBS/Qua/internal/plugin"
	"github.com/14ChannelBBS/Qua/internal/ratelimit"
	"github.com/14ChannelBBS/Qua/internal/realtime"
	"github.com/14ChannelBBS/Qua/internal/service"
	"github.com/14ChannelBBS/Qua/internal/shownid"
	"github.com/14ChannelBBS/Qua/internal/storage/pg"
	"github.com/14ChannelBBS/Qua/internal/storage/rediskv"
	"github.com/14ChannelBBS/Qua/internal/tasks"
	"github.com/14ChannelBBS/Qua/internal/verification"
)

const taskQueueSize = 256

// Dependencies holds every initialized component the entrypoint needs.
type Dependencies struct {
	Config  *config.Config
	Storage *pg.Storage
	Redis   *rediskv.Client
	Pool    *tasks.Pool
	Hub     *realtime.Hub
	Handler *handler.Handler
}

func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureSchema(); err != nil {
		storage.Cleanup()
		return nil, err
	}

	redis := rediskv.New(cfg.Public.Redis.Addr, cfg.Public.Redis.DB)
	if err := redis.Ping(context.Background()); err != nil {
		storage.Cleanup()
		return nil, err
	}

	limiter := ratelimit.New(redis, cfg.Public.ThreadCooldown, cfg.Public.ResponseCooldown)
	verifier := verification.NewTurnstile(cfg.Private.TurnstileSecretKey)
	plugins := plugin.NewRegistry(plugin.NewShuffle())
	pool := tasks.NewPool(cfg.Public.Workers, taskQueueSize)
	hub := realtime.NewHub()

	identity := service.NewIdentity(storage, verifier, cfg.Private.TurnstileSiteKey)
	board := service.NewBoard(storage, cfg.Public.ThreadsPerPage)
	post := service.NewPost(
		storage,
		identity,
		limiter,
		plugins,
		service.NewReaction(storage),
		shownid.New(cfg.Private.ShownIdKey),
		pool,
		hub,
		cfg.Public.MaxResponses,
	)

	h := handler.New(board, post, identity, hub, legacy.ParsePolicy(cfg.Public.LegacyEncodePolicy))

	return &Dependencies{
		Config:  cfg,
		Storage: storage,
		Redis:   redis,
		Pool:    pool,
		Hub:     hub,
		Handler: h,
	}, nil
}

// Cleanup releases everything in reverse construction order. The pool drains
// first so in-flight tasks can still reach storage.
func (d *Dependencies) Cleanup() {
	d.Pool.Shutdown()
	d.Redis.Close()
	d.Storage.Cleanup()
}
