package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather-mcp-server/internal/application"
	"weather-mcp-server/internal/domain"
	"weather-mcp-server/internal/infrastructure"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration; fall back to defaults when the default file is
	// absent so the binary runs with nothing but WEATHER_API_KEY set.
	var config *domain.Config
	if _, err := os.Stat(*configPath); os.IsNotExist(err) && !flagWasSet("config") {
		log.Println("No configuration file found, using defaults (stdio transport)")
		config = domain.DefaultConfig()
	} else {
		log.Printf("Loading configuration from: %s", *configPath)
		loaded, err := domain.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		config = loaded
	}

	// Load the schema document. Any unresolved reference or malformed
	// schema refuses startup: no tool is served on a broken contract.
	log.Printf("Loading schema document from: %s", config.Schema.Path)
	store, err := domain.LoadDocument(config.Schema.Path)
	if err != nil {
		log.Fatalf("Failed to load schema document: %v", err)
	}
	log.Printf("Schema document loaded: %d tool(s)", len(store.Tools()))

	// The upstream credential is owned by the weather client; the
	// dispatch core never sees it.
	apiKey := os.Getenv("WEATHER_API_KEY")
	if apiKey == "" {
		log.Fatal("WEATHER_API_KEY environment variable is not set")
	}

	timeout := time.Duration(config.Upstream.TimeoutSeconds) * time.Second
	client := infrastructure.NewWeatherClient(config.Upstream.BaseURL, apiKey, timeout)

	// Build the registry; a tool without a handler (or the reverse) is a
	// configuration error and fails startup here.
	registry, err := application.NewToolRegistry(store, application.BuildWeatherHandlers(client))
	if err != nil {
		log.Fatalf("Failed to build tool registry: %v", err)
	}

	dispatcher := application.NewDispatcher(store, registry, timeout, nil)

	// Create transport based on configuration
	var transport domain.Transport
	switch config.Transport.Type {
	case "stdio":
		log.Println("Initializing stdio transport")
		transport = domain.NewStdioTransport()
	case "http":
		log.Printf("Initializing HTTP transport on %s:%d", config.Transport.HTTP.Host, config.Transport.HTTP.Port)
		transport = domain.NewHTTPTransport(config.Transport.HTTP.Host, config.Transport.HTTP.Port)
	default:
		log.Fatalf("Invalid transport type: %s", config.Transport.Type)
	}

	server := application.NewServer(transport, dispatcher, registry, config)
	log.Println("MCP server created")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	errChan := make(chan error, 1)
	go func() {
		log.Println("Starting MCP server...")
		if err := server.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()
	case err := <-errChan:
		log.Printf("Server error: %v", err)
		cancel()
		if err := server.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
		os.Exit(1)
	}

	log.Println("Closing server...")
	if err := server.Close(); err != nil {
		log.Printf("Error during server shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server shutdown complete")
}

// flagWasSet reports whether a flag was provided explicitly on the
// command line.
func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
