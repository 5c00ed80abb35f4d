// Command bkcnorm normalizes extraction output files offline.
// Each input *.json file holds one extraction (raw model output is accepted).
// Usage: go run ./cmd/bkcnorm -in extractions/ -out normalized/ -format xlsx
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"bkcnorm/internal/app"
	"bkcnorm/internal/config"
	"bkcnorm/internal/csvexport"
	"bkcnorm/internal/logging"
	"bkcnorm/internal/service"
)

var (
	inPath   = flag.String("in", "", "Extraction file or directory of *.json files (required)")
	outDir   = flag.String("out", "normalized", "Output directory")
	format   = flag.String("format", "", "Also write a combined export: csv or xlsx")
	name     = flag.String("name", "bookings", "Base name of the combined export file")
	mappings = flag.String("mappings", "", "Mappings file (overrides BKC_MAPPINGS_PATH)")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if *inPath == "" {
		flag.Usage()
		return fmt.Errorf("-in is required")
	}
	exportFormat := strings.ToLower(*format)
	if exportFormat != "" && exportFormat != service.FormatCSV && exportFormat != service.FormatXLSX {
		return fmt.Errorf("unsupported -format %q", *format)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *mappings != "" {
		cfg.Pipeline.MappingsPath = *mappings
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	comps, err := app.BuildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = comps.Close() }()

	files, err := inputFiles(*inPath)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no *.json files found in %s", *inPath)
	}

	raws := make([][]byte, len(files))
	for i, f := range files {
		if raws[i], err = os.ReadFile(f); err != nil {
			return fmt.Errorf("reading %s: %w", f, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Offline runs are not bound by the HTTP batch limit.
	batch := cfg.Batch
	batch.MaxItems = 0
	svc := service.NewBookingService(comps.Pipeline, batch, logger)

	items, err := svc.NormalizeBatch(ctx, raws)
	if err != nil {
		return fmt.Errorf("normalizing: %w", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	failed := 0
	for _, item := range items {
		src := files[item.Index]
		if item.Error != "" {
			failed++
			logger.Warn("skipping file", zap.String("file", src), zap.String("error", item.Error))
			continue
		}
		if err := writePayload(src, item); err != nil {
			return err
		}
		if fallbacks := item.Result.FallbackFields(); fallbacks != "" {
			logger.Info("normalized with fallbacks", zap.String("file", src), zap.String("fields", fallbacks))
		}
	}

	if exportFormat != "" {
		out := filepath.Join(*outDir, csvexport.BuildFilename(*name, exportFormat))
		if err := writeExport(ctx, svc, items, exportFormat, out); err != nil {
			return err
		}
		logger.Info("export written", zap.String("path", out))
	}

	logger.Info("done",
		zap.Int("files", len(files)),
		zap.Int("normalized", len(files)-failed),
		zap.Int("failed", failed),
	)
	return nil
}

func inputFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	files, err := filepath.Glob(filepath.Join(path, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}
	return files, nil
}

func writePayload(src string, item service.BatchItem) error {
	data, err := json.MarshalIndent(item.Result.Payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", src, err)
	}
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	out := filepath.Join(*outDir, base+".normalized.json")
	if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return nil
}

func writeExport(ctx context.Context, svc service.BookingService, items []service.BatchItem, format, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := svc.Export(ctx, service.Results(items), format, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
