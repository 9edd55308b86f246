package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm-bridge/internal/api"
	"crm-bridge/internal/config"
	"crm-bridge/internal/crm"
	"crm-bridge/internal/database"
	"crm-bridge/internal/hubspot"
	"crm-bridge/internal/jobs"
	"crm-bridge/internal/salesforce"
	"crm-bridge/internal/store"
	"crm-bridge/internal/token"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Get underlying SQL database for cleanup
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database connection: %v", err)
	}
	defer sqlDB.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.Database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Wire the credential store, auth adapters and token manager
	connections := store.NewConnectionStore(db)
	hubspotAuth := hubspot.NewAuth(cfg.HubSpot)
	salesforceAuth := salesforce.NewAuth(cfg.Salesforce)
	tokens := token.NewManager(connections, hubspotAuth, salesforceAuth)

	// Register the CRM adapters; dispatch happens once at the boundary
	registry := crm.NewRegistry()
	registry.RegisterAuth(hubspotAuth)
	registry.RegisterAuth(salesforceAuth)
	registry.Register(hubspot.NewClient(tokens))
	registry.Register(salesforce.NewClient(tokens, cfg.Salesforce.APIVersion))

	// Initialize job scheduler
	scheduler := jobs.NewScheduler(db)
	scheduler.Start()
	defer scheduler.Stop()

	// Setup API router
	router := api.NewRouter(cfg, registry, tokens)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
