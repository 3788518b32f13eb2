package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"bytemomo/remora/internal/adapter/jsonreport"
	"bytemomo/remora/internal/adapter/logger"
	"bytemomo/remora/internal/adapter/objectstore"
	"bytemomo/remora/internal/config"
	"bytemomo/remora/internal/domain"
	"bytemomo/remora/internal/usecase"
	"bytemomo/remora/internal/watch"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to audit YAML file (optional, defaults apply)")
		root        = flag.String("root", "", "Project root to audit (overrides config)")
		outDir      = flag.String("out", "", "Output directory (overrides config)")
		category    = flag.String("category", "", "Run a single category (security|performance|accessibility|testing|dependency)")
		watchMode   = flag.Bool("watch", false, "Re-run the audit when files change")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		logFile     = flag.String("log-file", "", "Also write logs to this file")
		versionFlag = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Printf("REMORA Audit Orchestrator v%s (%s)\n", version, commit)
		os.Exit(0)
	}

	// Environment overrides referenced by ${VAR} in the config file.
	_ = godotenv.Load()

	logger.Setup(*verbose, *logFile)
	log.WithField("version", version).Info("REMORA starting")

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if *root != "" {
		cfg.Root = *root
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := jsonreport.New(cfg.OutputDir)
	progress := make(chan domain.ProgressEvent, 256)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		consumeProgress(progress, *verbose)
	}()

	orch := usecase.NewAuditOrchestrator(cfg, store, progress, usecase.DefaultOrchestratorConfig())

	run := func(ctx context.Context) (exitCode int) {
		if *category != "" {
			res, err := orch.RunSpecific(ctx, domain.Category(*category))
			if err != nil {
				log.WithError(err).Error("Category audit failed")
				return 1
			}
			printCategorySummary(domain.Category(*category), res)
			return 0
		}

		report, err := orch.RunAll(ctx)
		if report != nil {
			printSummary(report, orch.GetStatus().State)
			publish(ctx, cfg, store, report)
		}
		if err != nil {
			log.WithError(err).Error("Audit run failed to persist")
			return 1
		}
		return 0
	}

	exitCode := run(ctx)

	if *watchMode {
		w := watch.New(cfg, func(ctx context.Context) { run(ctx) })
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("Watch mode failed")
			exitCode = 1
		}
	}

	close(progress)
	wg.Wait()
	os.Exit(exitCode)
}

func loadConfig(path string) (*config.Audit, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// publish uploads the finished reports when an object store is configured.
// Upload failures are warnings, never run failures.
func publish(ctx context.Context, cfg *config.Audit, store *jsonreport.Writer, report *domain.AuditReport) {
	if cfg.ObjectStore == nil || cfg.ObjectStore.Endpoint == "" {
		return
	}
	client, err := objectstore.New(*cfg.ObjectStore)
	if err != nil {
		log.WithError(err).Warn("Object store unavailable, skipping report publication")
		return
	}

	paths := []string{store.ReportPath()}
	for cat := range report.Categories {
		paths = append(paths, store.CategoryReportPath(cat))
	}
	client.PublishAll(ctx, report.RunID, paths)
}

func consumeProgress(events <-chan domain.ProgressEvent, verbose bool) {
	for ev := range events {
		if ev.Warning != "" {
			fmt.Fprintf(os.Stderr, "[%s] warning: %s\n", ev.Category, ev.Warning)
			continue
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "[%s] %d/%d %s\n", ev.Category, ev.Completed, ev.Total, ev.Task)
		}
	}
}

func printSummary(report *domain.AuditReport, state domain.RunState) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("AUDIT SUMMARY\n")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("Run ID: %s\n", report.RunID)
	fmt.Printf("State: %s\n", state)
	fmt.Printf("Duration: %s\n", report.Duration)
	fmt.Printf("Total issues: %d\n", report.Summary.TotalIssues)
	fmt.Printf("High: %d, Medium: %d, Low: %d\n",
		report.Summary.HighSeverity,
		report.Summary.MediumSeverity,
		report.Summary.LowSeverity)

	cats := make([]string, 0, len(report.Categories))
	for cat := range report.Categories {
		cats = append(cats, string(cat))
	}
	sort.Strings(cats)

	fmt.Printf("\nPER-CATEGORY:\n")
	for _, cat := range cats {
		res := report.Categories[domain.Category(cat)]
		fmt.Printf("  %-14s %4d issues (high: %d, medium: %d, low: %d)\n",
			cat, res.TotalIssues, res.HighSeverity, res.MediumSeverity, res.LowSeverity)
	}

	fmt.Println(strings.Repeat("=", 60))
}

func printCategorySummary(cat domain.Category, res domain.CategoryResult) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("%s AUDIT SUMMARY\n", strings.ToUpper(string(cat)))
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total issues: %d\n", res.TotalIssues)
	fmt.Printf("High: %d, Medium: %d, Low: %d\n", res.HighSeverity, res.MediumSeverity, res.LowSeverity)
	fmt.Println(strings.Repeat("=", 60))
}
