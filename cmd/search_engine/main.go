package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/newsearch/news-search-engine/api"
	"github.com/newsearch/news-search-engine/internal/engine"
)

const maxRequestBodySize = 32 << 20 // 32 MiB, bounds document batch uploads

func main() {
	var (
		help    = flag.Bool("help", false, "Show help message")
		version = flag.Bool("version", false, "Show version information")
		port    = flag.String("port", "8080", "Port to run the server on")
		dataDir = flag.String("data-dir", "./search_data", "Directory to store index data")
	)

	flag.Parse()

	if *help {
		fmt.Printf("News Search Engine - Boolean full-text search over news documents\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s                          # Start server on default port 8080\n", os.Args[0])
		fmt.Printf("  %s --port 9000              # Start server on port 9000\n", os.Args[0])
		fmt.Printf("  %s --data-dir /tmp/search   # Use custom data directory\n", os.Args[0])
		return
	}

	if *version {
		fmt.Printf("News Search Engine v1.0.0\n")
		return
	}

	log.Printf("Using data directory: %s", *dataDir)
	searchEngine := engine.NewEngine(*dataDir)

	router := gin.Default()
	router.Use(api.RequestSizeLimitMiddleware(maxRequestBodySize))
	router.Use(api.CORSMiddleware())

	api.SetupRoutes(router, searchEngine)

	// Stop background jobs cleanly on SIGINT/SIGTERM.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received %v, shutting down", sig)
		searchEngine.Close()
		os.Exit(0)
	}()

	log.Printf("Starting server on port %s...", *port)
	if err := router.Run(":" + *port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
