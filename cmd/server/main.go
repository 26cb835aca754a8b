package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cinebook/internal/config"
	"github.com/iliyamo/cinebook/internal/handler"
	"github.com/iliyamo/cinebook/internal/inventory"
	"github.com/iliyamo/cinebook/internal/logging"
	"github.com/iliyamo/cinebook/internal/middleware"
	"github.com/iliyamo/cinebook/internal/queue"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/router"
	"github.com/iliyamo/cinebook/internal/scheduler"
	"github.com/iliyamo/cinebook/internal/service"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logrus.WithError(err).Fatal("load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	log := logrus.WithField("env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cinemas := repository.NewCinemaRepo()
	movies := repository.NewMovieRepo(cinemas)
	snacks := repository.NewSnackRepo(repository.DefaultSnacks())
	users := repository.NewUserRepo()
	if _, err := users.Create(ctx, cfg.AdminUsername, cfg.AdminPassword, "Administrator", "", "", true, cfg.BcryptCost); err != nil {
		log.WithError(err).Fatal("seed admin user")
	}

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		log.Warn("redis unavailable; response cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	invOpts := []inventory.Option{inventory.WithLogger(logrus.WithField("component", "inventory"))}
	qcfg := config.LoadQueueConfig()
	if qcfg.Enabled {
		invOpts = append(invOpts, inventory.WithPublisher(service.NewQueuePublisher(qcfg.URL)))
	}
	inv := inventory.New(movies, cinemas, users, invOpts...)

	svc := service.NewBookingService(service.Deps{
		Cinemas:   cinemas,
		Movies:    movies,
		Snacks:    snacks,
		Users:     users,
		Inventory: inv,
		ReportTZ:  cfg.ReportTZ,
	})

	e := router.New(router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users),
		Public:    handler.NewPublicHandler(cinemas, movies, svc),
		Customer:  handler.NewCustomerHandler(svc),
		Admin:     handler.NewAdminHandler(cinemas, movies, svc, middleware.NewCachePurger(cacheCfg, rdb)),
		JWTSecret: cfg.JWTSecret,
		Cache:     middleware.NewRedisCache(cacheCfg, rdb),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	if _, err := scheduler.NewRollup(svc, cfg.ReportTZ).Start(ctx, cfg.RollupAt); err != nil {
		log.WithError(err).Fatal("start scheduler")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Infof("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	if qcfg.Enabled {
		g.Go(func() error {
			return queue.NewConsumer(qcfg.URL, qcfg.LogDir).Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("server stopped")
}
