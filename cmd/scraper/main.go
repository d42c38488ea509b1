package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/floracart/scraper/config"
	"github.com/floracart/scraper/fetch"
	"github.com/floracart/scraper/images"
	"github.com/floracart/scraper/models"
	"github.com/floracart/scraper/robots"
	"github.com/floracart/scraper/scraper"
	"github.com/floracart/scraper/store"
)

func main() {
	defaultCfg := config.DefaultConfig()
	dbDefault := defaultCfg.DatabasePath
	if value, ok := config.EnvString("SCRAPER_DB"); ok {
		dbDefault = value
	}
	uploadDefault := defaultCfg.UploadDir
	if value, ok := config.EnvString("SCRAPER_UPLOAD_DIR"); ok {
		uploadDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("SCRAPER_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	pageURL := flag.String("url", "", "Catalog listing page URL to scrape")
	analyze := flag.Bool("analyze", false, "Analyze only: report detected products without importing")
	history := flag.Bool("history", false, "Show recent imports and exit")
	categoryID := flag.Int("category", 0, "Target category id for imported products")
	priceMultiplier := flag.Float64("price-multiplier", 1, "Multiplier applied to scraped prices")
	currencyMultiplier := flag.Float64("currency-multiplier", 1, "Currency conversion multiplier")
	chunkSize := flag.Int("chunk-size", defaultCfg.ChunkSize, "Products processed between cooldowns")
	delayMs := flag.Int("delay", int(defaultCfg.ChunkDelay/time.Millisecond), "Cooldown between chunks (milliseconds)")
	timeoutSec := flag.Int("timeout", int(defaultCfg.Timeout/time.Second), "Page and image fetch timeout (seconds)")
	dbPath := flag.String("db", dbDefault, "SQLite catalog database path (empty for in-memory)")
	uploadDir := flag.String("upload-dir", uploadDefault, "Base directory for stored product images")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := config.DefaultConfig()
	cfg.ChunkSize = *chunkSize
	cfg.ChunkDelay = time.Duration(*delayMs) * time.Millisecond
	cfg.Timeout = time.Duration(*timeoutSec) * time.Second
	cfg.UploadDir = *uploadDir
	cfg.DatabasePath = *dbPath
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	products, categories, closeStore, err := openCatalog(cfg)
	if err != nil {
		slog.Error("opening catalog", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *history {
		printHistory(ctx, products)
		return
	}

	if *pageURL == "" {
		fmt.Fprintln(os.Stderr, "usage: scraper -url <listing page> [-analyze] [-category <id>]")
		os.Exit(2)
	}

	files, err := store.NewDiskStorage(cfg.UploadDir)
	if err != nil {
		slog.Error("creating file storage", slog.Any("error", err))
		os.Exit(1)
	}

	pages := fetch.New(fetch.Options{Timeout: cfg.Timeout})
	robotsClient := fetch.New(fetch.Options{Timeout: cfg.RobotsTimeout})
	checker := robots.NewChecker(robotsClient, cfg.RobotsTTL)
	processor := images.NewProcessor(pages, files, images.Options{
		MaxBytes: cfg.ImageMaxBytes,
		MaxDim:   cfg.ImageMaxDim,
		Quality:  cfg.ImageQuality,
	})
	metrics := scraper.NewMetrics()

	service, err := scraper.NewService(cfg, scraper.Deps{
		Pages:      pages,
		Robots:     checker,
		Images:     processor,
		Products:   products,
		Categories: categories,
		Metrics:    metrics,
	})
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	if *analyze {
		report := service.Analyze(ctx, *pageURL)
		printReport(report)
	} else {
		if err := runImport(ctx, service, categories, *pageURL, models.ImportOptions{
			TargetCategoryID:   *categoryID,
			PriceMultiplier:    *priceMultiplier,
			CurrencyMultiplier: *currencyMultiplier,
			ChunkSize:          cfg.ChunkSize,
			ChunkDelay:         cfg.ChunkDelay,
		}); err != nil {
			slog.Error("import failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}
}

func openCatalog(cfg *config.Config) (store.ProductStore, store.CategoryStore, func(), error) {
	if cfg.DatabasePath == "" {
		slog.Warn("no database configured, using in-memory catalog")
		return store.NewMemoryStore(), store.NewMemoryCategories(), func() {}, nil
	}
	db, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return nil, nil, nil, err
	}
	closeStore := func() {
		if err := db.Close(); err != nil {
			slog.Error("closing catalog", slog.Any("error", err))
		}
	}
	return db, db.Categories(), closeStore, nil
}

func runImport(ctx context.Context, service *scraper.Service, categories store.CategoryStore, pageURL string, opts models.ImportOptions) error {
	category, err := categories.GetByID(ctx, opts.TargetCategoryID)
	if err != nil {
		return fmt.Errorf("resolve category %d: %w", opts.TargetCategoryID, err)
	}
	if category == nil {
		return fmt.Errorf("category %d not found in catalog", opts.TargetCategoryID)
	}

	startTime := time.Now()
	result, err := service.Import(ctx, pageURL, opts, func(p models.Progress) {
		slog.Info("import progress",
			slog.Int("processed", p.Processed),
			slog.Int("total", p.Total),
			slog.Int("success", p.Success),
			slog.Int("failed", p.Failed),
			slog.String("current", p.CurrentProduct),
		)
	})
	if err != nil {
		return err
	}

	printSummary(result, time.Since(startTime), pageURL)
	return nil
}

func printReport(report *models.AnalyzeResult) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Analysis complete")
	fmt.Printf("  URL:            %s\n", report.URL)
	fmt.Printf("  Success:        %t\n", report.Success)
	fmt.Printf("  Robots allowed: %t\n", report.RobotsAllowed)
	fmt.Printf("  Products found: %d\n", report.ProductCount)
	if !report.Selectors.Empty() {
		fmt.Printf("  Container:      %s\n", report.Selectors.Container)
	}
	if report.Pagination.HasPagination {
		fmt.Printf("  Pagination:     yes (%s)\n", report.Pagination.NextPageSelector)
	}
	for _, e := range report.Errors {
		fmt.Printf("  Warning:        %s\n", e)
	}
	for i, p := range report.Products {
		fmt.Printf("  [%d] %s | %.2f (%s)\n", i+1, p.Name, p.Price, p.Image)
	}
	fmt.Println(separator)
}

func printSummary(result *models.ImportResult, duration time.Duration, pageURL string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Import complete")
	fmt.Printf("  Source:        %s\n", pageURL)
	fmt.Printf("  Imported:      %d\n", result.Success)
	fmt.Printf("  Failed:        %d\n", result.Failed)
	fmt.Printf("  Duration:      %v\n", duration)
	fmt.Println(separator)
}

func printHistory(ctx context.Context, products store.ProductStore) {
	recent, err := store.RecentImports(ctx, products, 10)
	if err != nil {
		slog.Error("reading import history", slog.Any("error", err))
		os.Exit(1)
	}
	if len(recent) == 0 {
		fmt.Println("no imported products")
		return
	}
	for _, p := range recent {
		fmt.Printf("%d\t%s\t%s\t%d\n", p.ID, p.Slug, p.Name, p.Price)
	}
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
