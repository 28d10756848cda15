// Command migrate manages the PostgreSQL schema of the sale ledger.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/saleledger/backend/internal/infrastructure/config"
	"github.com/saleledger/backend/internal/infrastructure/logger"
	"github.com/saleledger/backend/internal/infrastructure/migration"
	"github.com/saleledger/backend/migrations"
	"go.uber.org/zap"
)

const usage = `Sale ledger schema migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  version               Show the current version
  force <version>       Set the version without running migrations
  create <name> [desc]  Write a new up/down pair
  list                  List migration files

Flags:
`

// schemaCommands need a database connection; the rest only touch files.
var schemaCommands = map[string]func(m *migration.Migrator, args []string, log *zap.Logger) error{
	"up":   func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Up() },
	"down": func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Down() },
	"step": func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		n, err := intArg(args, "step count")
		if err != nil {
			return err
		}
		return m.Steps(n)
	},
	"force": func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		v, err := intArg(args, "version")
		if err != nil {
			return err
		}
		return m.Force(v)
	},
	"version": func(m *migration.Migrator, _ []string, log *zap.Logger) error {
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	},
}

func main() {
	dir := flag.String("path", "", "read migrations from this directory instead of the embedded set")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), "\nConnection settings come from config.toml or LEDGER_DATABASE_* variables.")
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(args[0], args[1:], *dir, log); err != nil {
		log.Fatal("migrate "+args[0]+" failed", zap.Error(err))
	}
}

func run(command string, args []string, dir string, log *zap.Logger) error {
	fileDir := dir
	if fileDir == "" {
		fileDir = "migrations"
	}

	switch command {
	case "create":
		if len(args) == 0 {
			return fmt.Errorf("usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 1 {
			description = args[1]
		}
		mf, err := migration.CreateMigration(fileDir, args[0], description)
		if err != nil {
			return err
		}
		log.Info("Migration created", zap.String("up", mf.UpPath), zap.String("down", mf.DownPath))
		return nil
	case "list":
		files, err := migration.ListMigrations(fileDir)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Println(f)
		}
		return nil
	}

	cmd, ok := schemaCommands[command]
	if !ok {
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}

	m, err := openMigrator(dir, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return cmd(m, args, log)
}

func openMigrator(dir string, log *zap.Logger) (*migration.Migrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return nil, fmt.Errorf("driver %q has no migrations; only postgres is versioned", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dir == "" {
		return migration.NewFromFS(db, migrations.FS, log)
	}
	return migration.New(db, dir, log)
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s required", what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return n, nil
}
