package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-crawl-ebay/config"
	"github.com/aluiziolira/go-crawl-ebay/models"
	"github.com/aluiziolira/go-crawl-ebay/pipeline"
	"github.com/aluiziolira/go-crawl-ebay/scraper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	defaultCfg := config.DefaultConfig()

	if path, ok := config.EnvString("CRAWLER_CONFIG"); ok {
		fileCfg, err := config.LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid CRAWLER_CONFIG: %v\n", err)
			os.Exit(1)
		}
		fileCfg.Apply(defaultCfg)
	}
	if value, ok := config.EnvString("CRAWLER_STORE"); ok {
		defaultCfg.StoreName = value
	}
	if value, ok := config.EnvString("CRAWLER_DATA_DIR"); ok {
		defaultCfg.DataDir = value
	}
	if value, ok := config.EnvString("CRAWLER_METRICS_ADDR"); ok {
		defaultCfg.MetricsAddr = value
	}
	delayDefault := int(defaultCfg.Delay / time.Millisecond)
	if value, ok, err := config.EnvInt("CRAWLER_DELAY_MS"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid CRAWLER_DELAY_MS: %v\n", err)
		os.Exit(1)
	} else if ok {
		delayDefault = value
	}

	store := flag.String("store", defaultCfg.StoreName, "eBay store name to crawl")
	condition := flag.String("condition", defaultCfg.Condition,
		fmt.Sprintf("Filter items by condition (%s)", strings.Join(config.Conditions, ", ")))
	dataDir := flag.String("data-dir", defaultCfg.DataDir, "Base directory to save crawled data")
	logDir := flag.String("log-dir", defaultCfg.LogDir, "Directory for per-run log files")
	baseURL := flag.String("base-url", defaultCfg.BaseURL, "Override the storefront start URL")
	delayMs := flag.Int("delay", delayDefault, "Pause between page fetches (milliseconds)")
	metricsAddr := flag.String("metrics-addr", defaultCfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	cfg := defaultCfg
	cfg.StoreName = *store
	cfg.Condition = *condition
	cfg.DataDir = *dataDir
	cfg.LogDir = *logDir
	cfg.BaseURL = *baseURL
	cfg.Delay = time.Duration(*delayMs) * time.Millisecond
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *debug

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, logFile, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	writer, err := pipeline.NewJSONDirWriter(cfg.DataDir, cfg.StoreName)
	if err != nil {
		logger.Error("creating data directory", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("data will be saved", slog.String("dir", writer.Dir()))
	if existing, err := writer.Count(); err == nil && existing > 0 {
		logger.Info("data directory holds records from a previous run",
			slog.Int("existing", existing),
		)
	}

	p, err := pipeline.NewPipeline(writer, logger)
	if err != nil {
		logger.Error("initialising pipeline", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Error("close pipeline", slog.Any("error", err))
		}
	}()

	c, err := scraper.NewCrawler(cfg, logger)
	if err != nil {
		logger.Error("initialising crawler", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(c.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		logger.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	result, runErr := c.Run(ctx, p)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(result, writer.Dir())

	if runErr != nil {
		logger.Error("crawl failed", slog.Any("error", runErr))
		os.Exit(1)
	}
}

func printSummary(result *models.CrawlResult, dataDir string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Crawl complete")
	fmt.Printf("  Pages crawled:  %d\n", result.PagesCrawled)
	fmt.Printf("  Items found:    %d\n", result.ItemsFound)
	fmt.Printf("  Items filtered: %d\n", result.ItemsFiltered)
	fmt.Printf("  Items invalid:  %d\n", result.ItemsInvalid)
	fmt.Printf("  Items saved:    %d\n", result.ItemsSaved)
	if result.ItemsFailed > 0 {
		fmt.Printf("  Write failures: %d\n", result.ItemsFailed)
	}
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:    %v\n", result.ErrorsByType)
	}
	fmt.Printf("  Duration:       %v\n", result.EndTime.Sub(result.StartTime))
	fmt.Printf("  Data directory: %s\n", dataDir)
	fmt.Println(separator)
}

// newLogger writes leveled logs to a per-run file under the log
// directory, mirrored to stdout.
func newLogger(cfg *config.Config) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory %q: %w", cfg.LogDir, err)
	}

	name := fmt.Sprintf("%s_%s.log", cfg.StoreName, time.Now().Format("20060102_150405"))
	path := filepath.Join(cfg.LogDir, name)
	logFile, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create log file %q: %w", path, err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(io.MultiWriter(logFile, os.Stdout), &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler), logFile, nil
}
