package main

import (
	"fmt"
	"os"

	"github.com/opencourts/offence-registry-backend/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init application: %v\n", err)
		os.Exit(1)
	}
	defer application.Shutdown()

	if err := application.Start(); err != nil {
		application.Log.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
