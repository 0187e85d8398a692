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

	"github.com/nickyhof/SnapDB"
	"github.com/nickyhof/SnapDB/core"
	"github.com/nickyhof/SnapDB/ps"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	port := flag.Int("port", 3000, "HTTP port to listen on")
	baseDir := flag.String("baseDir", "", "Base directory for persistence (memory if empty)")
	history := flag.Bool("history", true, "Commit every snapshot to a git history")
	jwtSecret := flag.String("jwtSecret", "", "Shared secret for JWT authentication (disabled if empty)")
	jwtIssuer := flag.String("jwtIssuer", "", "Expected JWT issuer")
	jwtAudience := flag.String("jwtAudience", "", "Expected JWT audience")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("SnapDB SQL Server v%s\n", Version)
		return
	}

	var persistence *ps.Persistence
	var err error
	if *baseDir == "" {
		log.Println("Using memory persistence")
		persistence, err = ps.NewMemoryPersistence()
	} else {
		log.Printf("Using file persistence: %s", *baseDir)
		persistence, err = ps.NewFilePersistence(*baseDir, *history)
	}
	if err != nil {
		log.Fatalf("Failed to initialize persistence: %v", err)
	}
	instance := SnapDB.Open(persistence)

	var authConfig *AuthConfig
	if *jwtSecret != "" {
		log.Println("JWT authentication enabled")
		authConfig = &AuthConfig{
			JWTSecret: *jwtSecret,
			Issuer:    *jwtIssuer,
			Audience:  *jwtAudience,
		}
	}

	identity := core.Identity{
		Name:  "SnapDB Server",
		Email: "server@snapdb.local",
	}

	server := NewServer(instance, identity, authConfig)
	if err := server.Start(fmt.Sprintf(":%d", *port)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Printf("║   SnapDB SQL Server v%-16s ║\n", Version)
	fmt.Println("║   Embedded SQL with JSON snapshots    ║")
	fmt.Println("╚═══════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Listening on port %d\n", *port)
	fmt.Println("POST /api/query with {\"query\": \"...\"}")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
