package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/api"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/api/handlers/user"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/api/handlers/util"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/configuration"
	natsroutes "github.com/File-Sharing-BondBridg/Image-Service/internal/nats"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/services"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/services/infrastructure"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

func main() {
	cfg := configuration.Load()

	if cfg.Tracing.Enabled {
		tracer.Start(tracer.WithService(cfg.Tracing.Service), tracer.WithEnv(cfg.Tracing.Env))
		defer tracer.Stop()
	}

	deps := handlers.Deps{Config: cfg}

	// Everything below is optional: the relay and the proxy only need the store.
	if _, _, err := services.ConnectNATS(cfg.NATSURL); err != nil {
		log.Printf("Warning: NATS unavailable, events disabled: %v", err)
	} else {
		deps.Publish = services.PublishEvent
		defer services.CloseNATS()
	}

	if err := services.InitializeMinio(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey,
		cfg.MinIO.QuarantineBucket, cfg.MinIO.UseSSL); err != nil {
		log.Printf("Warning: MinIO unavailable, quarantine disabled: %v", err)
	}

	if err := infrastructure.InitializePostgresShards(cfg.Database.Connections()); err != nil {
		log.Printf("Warning: scan ledger unavailable: %v", err)
	} else {
		defer infrastructure.ClosePostgresShards()
	}

	if deps.Publish != nil {
		startConsumers(deps, cfg)
	}

	r := newRouter(deps, cfg.Tracing)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}

func newRouter(deps handlers.Deps, tracing configuration.TracingConfig) *gin.Engine {
	r := gin.Default()
	if tracing.Enabled {
		r.Use(gintrace.Middleware(tracing.Service))
	}
	api.RegisterRoutes(r, deps)
	return r
}

func startConsumers(deps handlers.Deps, cfg *configuration.Config) {
	scanner := util.NewClamAVScanner(cfg.CLAMAVURL)
	if err := scanner.Ping(); err != nil {
		log.Printf("Warning: ClamAV not reachable at %s: %v", cfg.CLAMAVURL, err)
	}

	var (
		quarantine handlers.Quarantiner
		purge      user.PrefixDeleter
	)
	if m := services.GetMinioService(); m != nil {
		quarantine, purge = m, m
	}

	routes := natsroutes.Routes(
		handlers.NewFileEventHandler(deps, scanner, quarantine),
		user.NewHandler(deps, purge),
	)
	if _, err := natsroutes.SubscribeAll(services.SubscribeEvent, routes); err != nil {
		log.Printf("Warning: failed to subscribe consumers: %v", err)
	}
}
