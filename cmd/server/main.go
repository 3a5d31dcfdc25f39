package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	glog "github.com/labstack/gommon/log"

	"github.com/iliyamo/fishcamp/internal/config"
	"github.com/iliyamo/fishcamp/internal/handler"
	"github.com/iliyamo/fishcamp/internal/queue"
	"github.com/iliyamo/fishcamp/internal/repository"
	"github.com/iliyamo/fishcamp/internal/router"
	"github.com/iliyamo/fishcamp/internal/service"
	"github.com/iliyamo/fishcamp/internal/validation"
	"github.com/iliyamo/fishcamp/internal/view"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	log.Printf("store ready (driver=%s)", cfg.DBDriver)

	rdb := config.NewRedisClient(ctx, config.RedisOptions())
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}

	var events handler.EventPublisher
	if cfg.QueueEnabled {
		events = service.NewPublisher(cfg.AMQPURL)
		go func() {
			if err := queue.StartActivityConsumer(ctx, cfg.AMQPURL, cfg.ActivityLogDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("activity consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	// echo.New defaults to ERROR, which would hide unpublished activity events.
	e.Logger.SetLevel(glog.WARN)
	e.Renderer = view.MustNew()
	e.HTTPErrorHandler = handler.HTTPErrorHandler(e.Logger)
	router.RegisterRoutes(e, router.Deps{
		Config:    cfg,
		Store:     store,
		Handler:   handler.NewCampgroundHandler(store, validation.New(), events),
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Printf("store close: %v", err)
	}
}
