package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"dndinfo/internal/app"
	"dndinfo/internal/config"
	"dndinfo/internal/database"
	"dndinfo/internal/domain/catalog"
	"dndinfo/internal/domain/dndimport"
	"dndinfo/internal/labels"
	"dndinfo/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	limit := flag.Int("limit", cfg.ImportLimit, "items per kind to import, 0 for all")
	kindsFlag := flag.String("kinds", "monster,spell,equipment", "comma separated kinds")
	flag.Parse()

	kinds, err := parseKinds(*kindsFlag)
	if err != nil {
		color.Red("%v", err)
		os.Exit(2)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, err := labels.Load(cfg.LabelsFile)
	if err != nil {
		lg.Fatal("label table load failed", "error", err)
	}
	db, err := database.Connect(cfg.DatabaseURL, database.WithLogger(lg), database.Silent())
	if err != nil {
		lg.Fatal("database connect failed", "error", err)
	}
	if err := database.Migrate(db, app.Models()...); err != nil {
		lg.Fatal("migration failed", "error", err)
	}

	target := catalog.NewService(catalog.NewRepository(db), table, lg, catalog.Options{})
	client := dndimport.NewClient(lg, dndimport.Config{BaseURL: cfg.DndAPIURL, Timeout: cfg.DndAPITimeout})
	importer := dndimport.NewImporter(client, target, table, lg)

	color.Cyan("Importing %s from %s (limit %d)", *kindsFlag, cfg.DndAPIURL, *limit)

	report, err := importer.Run(ctx, kinds, *limit)
	if err != nil {
		color.Red("import interrupted: %v", err)
	}
	if report == nil {
		os.Exit(1)
	}

	for _, k := range report.Kinds {
		if k.Error != "" {
			color.Red("%-10s listing failed: %s", k.Kind, k.Error)
			continue
		}
		line := fmt.Sprintf("%-10s listed %d, created %d, existing %d", k.Kind, k.Listed, k.Created, k.Existing)
		if k.Failed > 0 {
			color.Yellow("%s, failed %d", line, k.Failed)
		} else {
			color.Green(line)
		}
	}

	created, existing, failed := report.Totals()
	color.New(color.Bold).Printf("Total: created %d, existing %d, failed %d\n", created, existing, failed)
	if failed > 0 || err != nil {
		os.Exit(1)
	}
}

func parseKinds(raw string) ([]catalog.Kind, error) {
	var kinds []catalog.Kind
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		kind, err := catalog.ParseKind(part)
		if err != nil {
			return nil, fmt.Errorf("--kinds: %q: %w", part, err)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}
