package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/posprint/receipt-templates/internal/api"
	"github.com/posprint/receipt-templates/internal/assemble"
	"github.com/posprint/receipt-templates/internal/binding"
	"github.com/posprint/receipt-templates/internal/resolve"
	"github.com/posprint/receipt-templates/internal/store"
)

// Version is set during build via ldflags
var Version = "dev"

func main() {
	port := getPort()
	templatesPath := getTemplatesPath()

	templates, err := store.NewFileStore(templatesPath)
	if err != nil {
		log.Fatalf("Failed to open template store: %v", err)
	}

	// View bindings are resolved against an external backend when one is
	// configured; without one, ext sections render from local data only.
	var executor binding.ViewExecutor
	if baseURL := os.Getenv("VIEWS_BASE_URL"); baseURL != "" {
		executor = binding.NewHTTPViewExecutor(baseURL)
		log.Printf("View backend: %s", baseURL)
	}

	formatter := resolve.NewFormatter(
		getEnv("LOCALE", resolve.DefaultLocale),
		getEnv("CURRENCY", resolve.DefaultCurrency),
	)

	assembler := assemble.New(binding.NewResolver(executor), formatter)

	server := api.NewServer(templates, assembler)

	serverErrChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("0.0.0.0:%s", port)
		log.Printf("Starting template server on %s", addr)
		if err := server.Run(addr); err != nil {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrChan:
		log.Fatalf("Server error: %v", err)
	case <-sigChan:
		log.Println("Shutting down...")
		os.Exit(0)
	}
}

func getPort() string {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		return port
	}

	for i, arg := range os.Args {
		if arg == "--port" && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
	}

	return "12312"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getTemplatesPath returns the path to the template store file.
// It tries to place it next to the executable, or falls back to current directory.
func getTemplatesPath() string {
	if path := os.Getenv("TEMPLATES_PATH"); path != "" {
		return path
	}

	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		storePath := filepath.Join(exeDir, "templates.json")

		testFile := filepath.Join(exeDir, ".receipt-templates-write-test")
		if f, err := os.Create(testFile); err == nil {
			f.Close()
			os.Remove(testFile)
			return storePath
		}
	}

	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "templates.json")
	}

	return "templates.json"
}
