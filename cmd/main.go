// Package main is the production entry point for the Aura music client.
//
// Aura recommends music from the listener's detected or chosen mood:
// - Event-driven communication between services and the UI
// - Dependency injection for testability
// - MVP pattern for UI decoupling
// - Playback on a Spotify Connect device
//
// Configuration comes from the environment, optionally from a .env file in
// the working directory (see internal/app for the variables).
//
// Build:
//
//	go build -o build/aura ./cmd
//
// Run:
//
//	./build/aura [aura://link]
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/tejashwikalptaru/aura/internal/app"
)

func main() {
	// A missing .env is fine; a malformed one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}

	config := app.DefaultConfig()

	// A link passed on the command line wins over the environment.
	if len(os.Args) > 1 {
		config.StartLocation = os.Args[1]
	}

	// Create the application with dependency injection
	application, err := app.NewApplication(config)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	// Run application (blocks until the window closed)
	if err := application.Run(); err != nil {
		log.Printf("Application error: %v", err)
	}
}
