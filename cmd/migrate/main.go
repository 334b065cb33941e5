package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/crm/internal/storage/postgres"
)

const runTimeout = 30 * time.Second

func usage() {
	fmt.Fprintf(os.Stderr, `usage: migrate [flags] <up|down|status>

Applies embedded SQL migrations to the CRM database.

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	var (
		dsn   string
		steps int
	)
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: CRM_POSTGRES_DSN)")
	flag.IntVar(&steps, "steps", 0, "how many migrations to apply or roll back (0 = all for up, 1 for down)")
	flag.Usage = usage
	flag.Parse()

	command := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	if command == "" {
		usage()
		os.Exit(2)
	}

	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(os.Getenv("CRM_POSTGRES_DSN"))
	}
	if dsn == "" {
		fail("CRM_POSTGRES_DSN (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	switch command {
	case "up":
		if err := store.MigrateUp(ctx, steps); err != nil {
			fail("migrate up failed: %v", err)
		}
		report(ctx, store, "migrate up ok")
	case "down":
		if err := store.MigrateDown(ctx, steps); err != nil {
			fail("migrate down failed: %v", err)
		}
		report(ctx, store, "migrate down ok")
	case "status":
		report(ctx, store, "migration status")
	default:
		fail("unknown command %q (use up|down|status)", command)
	}
}

func report(ctx context.Context, store *postgres.Store, prefix string) {
	state, err := store.MigrationStatus(ctx)
	if err != nil {
		fail("migration status failed: %v", err)
	}
	fmt.Printf("%s: version=%d applied=%d\n", prefix, state.Version, state.Applied)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
