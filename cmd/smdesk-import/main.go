// Command smdesk-import loads a spreadsheet of SM activities or business
// inquiries into the record store, one row at a time, stopping at the first
// row the store rejects.
//
// Flags:
//
//	-kind     activities | inquiries
//	-file     .xlsx or .csv file to import
//	-dry-run  parse and print the rows without writing
//
// Exit codes: 0 = success, 1 = bad input or unreadable sheet, 2 = store failure.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bitfantasy/smdesk/internal/config"
	"github.com/bitfantasy/smdesk/internal/ops/repository"
	"github.com/bitfantasy/smdesk/internal/ops/service"
	"github.com/bitfantasy/smdesk/internal/ops/sheet"
	"github.com/bitfantasy/smdesk/internal/shared/postgrest"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	exitInput = 1
	exitStore = 2
)

func main() {
	kind := flag.String("kind", string(sheet.KindActivity), "record kind: activities or inquiries")
	file := flag.String("file", "", "spreadsheet to import (.xlsx or .csv)")
	dryRun := flag.Bool("dry-run", false, "parse only, print rows as JSON")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "-file is required")
		flag.Usage()
		os.Exit(exitInput)
	}
	if sheet.Kind(*kind) != sheet.KindActivity && sheet.Kind(*kind) != sheet.KindInquiry {
		fmt.Fprintf(os.Stderr, "unknown -kind %q\n", *kind)
		os.Exit(exitInput)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Log.Level != "debug" {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(cfg)
	if err != nil {
		logger.Error("open store", zap.Error(err))
		os.Exit(exitStore)
	}
	svc := service.NewServices(repos, nil, service.Defaults{
		Activity: cfg.Defaults.Activity,
		Inquiry:  cfg.Defaults.Inquiry,
	}, logger)

	f, err := os.Open(*file)
	if err != nil {
		logger.Error("open file", zap.Error(err))
		os.Exit(exitInput)
	}
	defer f.Close()
	name := filepath.Base(*file)

	var (
		total     int
		committed int
		rows      interface{}
	)
	switch sheet.Kind(*kind) {
	case sheet.KindActivity:
		parsed, perr := svc.Activity.ParseSheet(f, name)
		if perr != nil {
			exitWith(logger, perr)
		}
		total, rows = len(parsed), parsed
		if !*dryRun {
			committed, err = svc.Activity.Import(ctx, parsed)
		}
	case sheet.KindInquiry:
		parsed, perr := svc.Inquiry.ParseSheet(f, name)
		if perr != nil {
			exitWith(logger, perr)
		}
		total, rows = len(parsed), parsed
		if !*dryRun {
			committed, err = svc.Inquiry.Import(ctx, parsed)
		}
	}

	if *dryRun {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(rows)
		logger.Info("dry run, nothing written", zap.Int("rows", total))
		return
	}
	if err != nil {
		exitWith(logger, err)
	}
	logger.Info("import finished", zap.String("kind", *kind), zap.Int("committed", committed), zap.Int("rows", total))
}

func openRepositories(cfg *config.Config) (*repository.Repositories, error) {
	if cfg.Store.Backend == repository.BackendPostgres {
		db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		return repository.NewDBRepositories(db), nil
	}
	client := postgrest.NewClient(cfg.Store.URL, cfg.Store.APIKey,
		postgrest.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}))
	return repository.NewRESTRepositories(client), nil
}

func exitWith(logger *zap.Logger, err error) {
	if ce, ok := sheet.AsCodecError(err); ok {
		logger.Error("sheet rejected", zap.Error(ce))
		os.Exit(exitInput)
	}
	if ie, ok := service.AsImportError(err); ok {
		logger.Error("import stopped",
			zap.Int("row", ie.Row+1),
			zap.Int("committed", ie.Committed),
			zap.Error(ie.Err))
		os.Exit(exitStore)
	}
	logger.Error("import failed", zap.Error(err))
	os.Exit(exitStore)
}
