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

	"github.com/lovedhomes/lovedhomes/internal/docstore"
	"github.com/lovedhomes/lovedhomes/internal/logging"
	"github.com/lovedhomes/lovedhomes/internal/server"
)

func main() {
	port := os.Getenv("LOVEDHOMES_PORT")
	if port == "" {
		port = "8000"
	}

	dbPath := os.Getenv("LOVEDHOMES_DB_PATH")
	if dbPath == "" {
		dbPath = "lovedhomes.db"
	}

	logger := logging.Setup(os.Getenv("LOVEDHOMES_LOG_LEVEL"), os.Getenv("LOVEDHOMES_LOG_FORMAT"))

	ds, err := docstore.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open document store: %v", err)
	}
	defer ds.Close()

	srv := server.New(ds, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Loved Homes backend running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
