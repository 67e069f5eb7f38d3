package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cx-tal-miterani/flight-search/internal/catalog"
	"github.com/cx-tal-miterani/flight-search/internal/config"
	"github.com/cx-tal-miterani/flight-search/internal/handlers"
	"github.com/cx-tal-miterani/flight-search/internal/router"
	"github.com/cx-tal-miterani/flight-search/internal/service"
	"github.com/cx-tal-miterani/flight-search/internal/websocket"
)

func main() {
	cfg := config.Load()

	// Connect to the catalog store
	pool, err := pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()

	repo := catalog.NewRepository(pool)
	hub := websocket.GetHub()

	// Initialize services
	flightService := service.NewFlightService(repo, hub, cfg.Search.DefaultPageSize)

	// Initialize handlers
	h := handlers.NewHandler(flightService)

	// Create router
	r := router.SetupRouter(h)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Flight search API starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
