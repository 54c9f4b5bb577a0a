package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jonathan/fursa/internal/config"
	"github.com/jonathan/fursa/internal/db"
	"github.com/jonathan/fursa/internal/discover"
	"github.com/jonathan/fursa/internal/extract"
	"github.com/jonathan/fursa/internal/fetch"
	"github.com/jonathan/fursa/internal/ingest"
	"github.com/jonathan/fursa/internal/llm"
	"github.com/jonathan/fursa/internal/sources"
)

var (
	runConfigPath string
	runCronSpec   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ingestion pass (or keep running on a cron schedule)",
	Long: `Run the full ingestion pipeline: homepage discovery, career-URL discovery,
feed ingestion, rolling career-page extraction, reconciliation, and maintenance.
With --cron, the process stays up and runs the pipeline on the given schedule.`,
	RunE: runIngestion,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Path to JSON config file (optional)")
	runCmd.Flags().StringVar(&runCronSpec, "cron", "", "Cron schedule (e.g. \"0 6 * * *\"); empty runs once and exits")
	rootCmd.AddCommand(runCmd)
}

func runIngestion(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()

	store, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = llmClient.Close() }()

	orchestrator := buildOrchestrator(cfg, store, llmClient)

	if runCronSpec == "" {
		return runOnce(ctx, orchestrator)
	}
	return runScheduled(orchestrator)
}

func buildOrchestrator(cfg *config.Config, store *db.DB, llmClient llm.Client) *ingest.Orchestrator {
	httpClient := &http.Client{Timeout: fetch.DefaultTimeout}
	registry := sources.NewRegistry(httpClient)

	feeds := []ingest.Feed{sources.NewRemotive(httpClient)}
	if adzuna := sources.NewAdzuna(httpClient, cfg.AdzunaAppID, cfg.AdzunaAppKey); adzuna.Configured() {
		feeds = append(feeds, adzuna)
	} else {
		log.Printf("[fursa] adzuna credentials not set, feed disabled for this run")
	}
	linkedIn := sources.NewLinkedIn(httpClient, cfg.ProxycurlAPIKey, cfg.ProxycurlDailyCap, store)
	if linkedIn.Configured() {
		feeds = append(feeds, linkedIn)
	} else {
		log.Printf("[fursa] proxycurl API key not set, feed disabled for this run")
	}

	return &ingest.Orchestrator{
		Store:               store,
		Homepages:           discover.NewHomepageDiscoverer(llmClient),
		Careers:             discover.NewCareerDiscoverer(),
		Extractor:           extract.New(llmClient),
		Router:              sources.NewRouter(registry),
		Feeds:               feeds,
		Concurrency:         cfg.Concurrency,
		RollingWindow:       cfg.RollingWindow,
		DiscoveryBatch:      cfg.DiscoveryBatch,
		ScrapeDelay:         cfg.ScrapeDelay(),
		RediscoveryCooldown: cfg.RediscoveryCooldown(),
		InactiveAfter:       cfg.InactiveAfter(),
	}
}

func runOnce(ctx context.Context, orchestrator *ingest.Orchestrator) error {
	summary, err := orchestrator.Run(ctx)
	if err != nil {
		return err
	}
	printSummary(summary)
	return nil
}

// runScheduled keeps the process alive and runs the pipeline on the cron
// schedule until interrupted. Runs never overlap; a tick that fires while
// the previous run is still going is skipped.
func runScheduled(orchestrator *ingest.Orchestrator) error {
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := scheduler.AddFunc(runCronSpec, func() {
		summary, err := orchestrator.Run(context.Background())
		if err != nil {
			log.Printf("[fursa] scheduled run failed: %v", err)
			return
		}
		printSummary(summary)
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", runCronSpec, err)
	}

	log.Printf("[fursa] scheduler started, schedule=%q", runCronSpec)
	scheduler.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("[fursa] shutting down")
	<-scheduler.Stop().Done()
	return nil
}

func printSummary(summary *ingest.Summary) {
	fmt.Printf("Ingestion complete in %s\n", summary.Elapsed.Round(time.Millisecond))
	fmt.Printf("  Homepages found:   %d\n", summary.HomepagesFound)
	fmt.Printf("  Career URLs found: %d\n", summary.CareerURLsFound)
	fmt.Printf("  Feed jobs:         %d\n", summary.FeedJobs)
	fmt.Printf("  Companies scraped: %d\n", summary.Companies)
	fmt.Printf("  Jobs upserted:     %d\n", summary.JobsUpserted)
	fmt.Printf("  Jobs deactivated:  %d\n", summary.JobsDeactivated)
	for status, count := range summary.StatusCounts {
		fmt.Printf("    status %-15s %d\n", status+":", count)
	}
	for continent, count := range summary.JobsByContinent {
		fmt.Printf("    region %-15s %d\n", continent+":", count)
	}
}
