package setup

import (
	"context"
	"errors"

	"github.com/itchan-dev/feedback/backend/internal/cache"
	"github.com/itchan-dev/feedback/backend/internal/handler"
	"github.com/itchan-dev/feedback/backend/internal/revalidate"
	"github.com/itchan-dev/feedback/backend/internal/service"
	"github.com/itchan-dev/feedback/backend/internal/storage/sqldb"
	"github.com/itchan-dev/feedback/backend/internal/utils"
	"github.com/itchan-dev/feedback/shared/config"
	"github.com/itchan-dev/feedback/shared/jwt"
	"github.com/itchan-dev/feedback/shared/logger"
	mw "github.com/itchan-dev/feedback/shared/middleware"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config   *config.Config
	Storage  *sqldb.Storage
	Feedback *service.Feedback
	Handler  *handler.Handler
	Auth     *mw.Auth
	Jwt      jwt.JwtService

	closers []func() error
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	log := logger.Component("setup")

	driver, dsn := cfg.DataSource()
	storage, err := sqldb.New(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	deps := &Dependencies{Config: cfg, Storage: storage}
	deps.closers = append(deps.closers, storage.Cleanup)

	var revalidator revalidate.Revalidator = revalidate.NewLog()
	if cfg.Public.Revalidate.Enabled {
		if cfg.Private.RedisAddr == "" {
			deps.Close()
			return nil, errors.New("revalidate.enabled requires redis_addr")
		}
		redis, client, err := revalidate.NewRedis(ctx, cfg.Private.RedisAddr, cfg.Private.RedisPassword, cfg.Public.Revalidate.Channel)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.closers = append(deps.closers, client.Close)
		revalidator = redis
		log.Info("publishing revalidation signals", "channel", cfg.Public.Revalidate.Channel)
	}

	deps.Jwt = jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	deps.Auth = mw.NewAuth(deps.Jwt)
	deps.Feedback = service.NewFeedback(
		storage,
		cache.NewThreadList(),
		revalidator,
		mw.ContextCaller{},
		utils.NewValidator(),
		cfg.Public.ThreadCacheTTL,
	)
	deps.Handler = handler.New(deps.Feedback, storage, cfg.ViewLocation(), cfg.Public.SecureCookies)
	return deps, nil
}

// Close releases connections in reverse order of creation.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
