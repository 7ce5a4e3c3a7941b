package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/splitledger/splitledger/internal/api"
	"github.com/splitledger/splitledger/internal/service"
	"github.com/splitledger/splitledger/internal/storage/sqlite"
	"github.com/splitledger/splitledger/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/splitledger.db")
	port := getEnv("PORT", "8080")

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	server := api.NewServer(
		service.NewGroupService(store),
		service.NewExpenseService(store),
	)
	server.EnableMetrics()

	addr := fmt.Sprintf(":%s", port)
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, server.Handler()); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
