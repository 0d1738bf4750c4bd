package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"vidpress/internal/auth"
	"vidpress/internal/database"

	"golang.org/x/term"
)

const (
	// Default timeout for database operations
	defaultTimeout = 30 * time.Second
	// Default database directory path
	defaultDatabaseDir = "/database"
	// Minimum token length accepted by "set"
	minTokenLength = 8
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	databaseDir := os.Getenv("DATABASE_DIR")
	if databaseDir == "" {
		databaseDir = defaultDatabaseDir
	}
	dbPath := filepath.Join(databaseDir, "vidpress.db")

	db, err := database.New(ctx, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", databaseDir)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	switch command {
	case "set":
		if !setToken(ctx, db) {
			os.Exit(1)
		}
	case "status":
		showStatus(ctx, db)
	case "clear":
		if !clearToken(ctx, db) {
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage()
		os.Exit(1)
	}
}

// sanitizeCommand returns a safe representation of a command string for
// display. Anything outside [a-zA-Z0-9_-] becomes '_'.
func sanitizeCommand(cmd string) string {
	out := make([]byte, 0, len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			out = append(out, byte(r))
		} else {
			out = append(out, '_')
		}
	}
	return string(out)
}

func printUsage() {
	fmt.Println("VidPress Admin Token Management")
	fmt.Println("")
	fmt.Println("Usage: tokenctl <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  set     - Set or replace the admin token")
	fmt.Println("  status  - Check if a token is configured")
	fmt.Println("  clear   - Remove the token (API becomes open)")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Printf("  DATABASE_DIR - Path to database directory (default: %s)\n", defaultDatabaseDir)
}

func setToken(ctx context.Context, db *database.Database) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	fmt.Print("New Token: ")
	token, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading token: %v\n", err)
		return false
	}

	fmt.Print("Confirm Token: ")
	confirm, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading token: %v\n", err)
		return false
	}

	if !bytes.Equal(token, confirm) {
		fmt.Fprintln(os.Stderr, "Error: Tokens do not match")
		return false
	}

	if len(token) < minTokenLength {
		fmt.Fprintf(os.Stderr, "Error: Token must be at least %d characters\n", minTokenLength)
		return false
	}

	if err := auth.SetToken(ctx, db, string(token)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to store token: %v\n", err)
		return false
	}

	fmt.Println("Admin token updated successfully.")
	return true
}

func clearToken(ctx context.Context, db *database.Database) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.ClearAdminToken(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to clear token: %v\n", err)
		return false
	}

	fmt.Println("Admin token removed. The API is now open.")
	return true
}

func showStatus(ctx context.Context, db *database.Database) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	hash, err := db.GetAdminTokenHash(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to read token status: %v\n", err)
		return
	}
	if hash != "" {
		fmt.Println("Status: Admin token is configured")
	} else {
		fmt.Println("Status: No admin token configured (API is open)")
	}
}
