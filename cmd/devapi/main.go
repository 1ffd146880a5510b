package main

import (
	"log/slog"
	"os"

	"go-admin-panel/internal/app"
)

func main() {
	application, err := app.NewDevAPI()
	if err != nil {
		slog.Error("failed to initialize development API", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("development API run failed", "error", err)
		os.Exit(1)
	}
}
