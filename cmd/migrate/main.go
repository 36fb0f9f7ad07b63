package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"journey-chat/config"
	"journey-chat/internal/repository"
	"journey-chat/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
)

const usage = `
Journey Chat - Database CLI Tool

Usage:
  migrate [command]

Commands:
  up          Create the chat tables and indexes
  down        Drop the chat tables (users and journeys are kept)
  status      Show database connection and table status
  reset       Drop the chat tables and re-create them (DANGEROUS)
  seed        Insert demo users, a journey and sample messages

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
  go run cmd/migrate/main.go seed
`

func main() {
	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	ctx := context.Background()
	cfg := config.LoadConfig()
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer pool.Close()

	switch command {
	case "up":
		runMigrationsUp(ctx, pool)
	case "down":
		runMigrationsDown(ctx, pool)
	case "status":
		showStatus(ctx, pool)
	case "reset":
		runMigrationsDown(ctx, pool)
		runMigrationsUp(ctx, pool)
	case "seed":
		runSeed(ctx, pool)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("🚀 Running migrations UP...")

	if err := repository.InitSchema(ctx, pool); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ Migrations completed successfully!")
}

func runMigrationsDown(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("⬇️  Dropping chat tables...")

	if err := repository.DropChatTables(ctx, pool); err != nil {
		log.Fatalf("❌ Rollback failed: %v", err)
	}

	log.Println("✅ Rollback completed successfully!")
}

func runSeed(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("🌱 Seeding demo data...")

	if _, err := database.Seed(ctx, pool, database.DefaultSeedConfig()); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✅ Seeding completed successfully!")
}

func showStatus(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("🔍 Checking database status...")

	if err := database.HealthCheck(ctx, pool); err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	log.Println("✅ Database connection: OK")

	tables := append([]string{"users", "journeys", "journey_collaborators"}, repository.ChatTables()...)
	for _, table := range tables {
		exists, err := repository.TableExists(ctx, pool, table)
		if err != nil {
			log.Printf("⚠️  Error checking table %s: %v", table, err)
			continue
		}
		if exists {
			count, _ := database.TableCount(ctx, pool, table)
			log.Printf("✅ Table %-24s exists (%d rows)", table, count)
		} else {
			log.Printf("❌ Table %-24s does not exist", table)
		}
	}
}
