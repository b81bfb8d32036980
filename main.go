package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "farebox/internal/config"
	intdb "farebox/internal/db"
	router "farebox/internal/http"
	"farebox/internal/http/handlers"
	"farebox/internal/metrics"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	intconfig.ConnectDB(env.DBDSN)
	defer intconfig.CloseDB()

	if err := intdb.EnsureSchema(intconfig.DB); err != nil {
		log.Fatalf("schema bootstrap failed: %v", err)
	}

	collector := metrics.NewCollector()
	handlers.SetMetrics(collector)

	var metricsSrv *http.Server
	if env.MetricsAddr != "" {
		metricsSrv = collector.Serve(env.MetricsAddr)
	}

	r := router.NewRouter(env)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("farebox listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(ctx)
	}

	log.Println("server stopped cleanly.")
}
