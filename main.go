package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maumcare/internal/api"
	"maumcare/internal/auth"
	"maumcare/internal/config"
	"maumcare/internal/engine"
	"maumcare/internal/events"
	"maumcare/internal/redis"
	"maumcare/internal/retrieval"
	"maumcare/internal/service/ai"
	"maumcare/internal/service/counsel"
	"maumcare/internal/storage"
	"maumcare/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("open conversation store: %v", err)
	}
	defer closeStore()

	if cfg.Redis.Enabled {
		rdb, err := redis.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatalf("create redis client: %v", err)
		}
		defer rdb.Close()
		cached, err := storage.NewCachedStore(ctx, store, rdb, cfg.CacheTTL())
		if err != nil {
			log.Fatalf("init conversation cache: %v", err)
		}
		store = cached
	}

	opts := []counsel.Option{counsel.WithStore(store)}

	var dispatcher *worker.Dispatcher
	if cfg.Worker.Enabled {
		dispatcher = worker.NewDispatcher(cfg.Worker.MinWorkers, cfg.Worker.MaxWorkers, cfg.Worker.QueueSize, cfg.WorkerIdle())
		opts = append(opts, counsel.WithArchiver(dispatcher))
	}

	if cfg.Events.URL != "" {
		publisher, err := events.Dial(cfg.Events)
		if err != nil {
			log.Printf("events disabled: %v", err)
		} else {
			defer publisher.Close()
			opts = append(opts, counsel.WithPublisher(publisher))
		}
	}

	if name := cfg.BasicConfig.Provider; name != "" {
		generator, err := ai.NewGenerator(ctx, name, cfg.Providers[name], cfg.GeneratorTimeout())
		if err != nil {
			log.Printf("llm generation disabled: %v", err)
		} else {
			opts = append(opts, counsel.WithGenerator(generator))
		}
	}

	chat := counsel.NewService(engine.New(), opts...)
	handlerOpts := []api.Option{api.WithArchive(store)}

	if cfg.Retrieval.ManualPath != "" {
		manual, err := retrieval.NewManualIndex(ctx, cfg.Retrieval.ManualPath, cfg.Retrieval.Collection, cfg.Retrieval.TopK)
		if err != nil {
			log.Printf("manual retrieval disabled: %v", err)
		} else {
			if err := manual.Load(ctx); err != nil {
				log.Printf("manual not loaded: %v", err)
			} else {
				log.Printf("manual loaded: %d chunks", manual.Info().ChunkCount)
			}
			handlerOpts = append(handlerOpts, api.WithManual(manual))
		}
	}
	if cfg.Retrieval.WebSearch {
		if web := retrieval.NewSearchRetriever(ctx, cfg.Retrieval); web != nil {
			handlerOpts = append(handlerOpts, api.WithWebSearch(web))
		}
	}

	handlers := api.NewHandler(chat, auth.NewService(cfg.Admin.APIKeys), handlerOpts...)

	router := gin.Default()
	router.Use(api.RequestID())
	handlers.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.BasicConfig.ServerAddress,
		Handler: router,
	}
	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if dispatcher != nil {
		if err := dispatcher.Close(shutdownCtx); err != nil {
			log.Printf("archive pool drain: %v", err)
		}
	}
}

// openStore returns the configured conversation store and its cleanup.
func openStore(cfg *config.Config) (storage.Store, func(), error) {
	driver := storage.NormalizeDriver(cfg.Storage.Driver)
	if driver == "file" {
		fs, err := storage.NewFileStore(cfg.BasicConfig.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}

	log.Printf("dbType: %s", driver)
	db, err := storage.Open(driver, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := storage.Migrate(db, driver); err != nil {
		db.Close()
		return nil, nil, err
	}
	return storage.NewSQLStore(db, driver), func() { db.Close() }, nil
}
