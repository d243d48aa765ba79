package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/AlexOliinyk1/careerintel/internal/config"
	"github.com/AlexOliinyk1/careerintel/internal/dynstore"
	"github.com/AlexOliinyk1/careerintel/internal/salarystore"
	"github.com/AlexOliinyk1/careerintel/internal/scheduler"
	"github.com/AlexOliinyk1/careerintel/pkg/ingest"
	"github.com/AlexOliinyk1/careerintel/pkg/knowledge"
	"github.com/AlexOliinyk1/careerintel/pkg/notify"
	"github.com/AlexOliinyk1/careerintel/pkg/plan"
	"github.com/AlexOliinyk1/careerintel/pkg/qsource"
	"github.com/AlexOliinyk1/careerintel/pkg/question"
	"github.com/AlexOliinyk1/careerintel/pkg/salary"
	"github.com/AlexOliinyk1/careerintel/pkg/server"
	"github.com/AlexOliinyk1/careerintel/pkg/taxonomy"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

// cliLogger keeps one-shot commands quiet: routine pipeline logging stays
// out of the way unless something goes wrong.
func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func daemonLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func buildBank(cfg *config.Config) (*taxonomy.Bank, error) {
	if cfg.Data.TaxonomyPath == "" {
		return taxonomy.Default(), nil
	}
	bank, err := taxonomy.LoadBank(cfg.Data.TaxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}
	return bank, nil
}

func buildPipeline(cfg *config.Config, logger *slog.Logger) (*ingest.Pipeline, error) {
	bank, err := buildBank(cfg)
	if err != nil {
		return nil, err
	}
	store := dynstore.Open(cfg.Data.Dir, dynstore.Options{Logger: logger})
	return ingest.New(bank, store, ingest.Options{
		MinConfidence:      cfg.Ingest.MinConfidence,
		DuplicateThreshold: cfg.Ingest.DuplicateThreshold,
		Logger:             logger,
	}), nil
}

func buildKnowledge(cfg *config.Config, logger *slog.Logger) (*knowledge.Service, error) {
	bank, err := buildBank(cfg)
	if err != nil {
		return nil, err
	}
	store := dynstore.Open(cfg.Data.Dir, dynstore.Options{Logger: logger})
	return knowledge.New(bank, store, knowledge.Options{Logger: logger}), nil
}

func buildSources(cfg *config.Config, logger *slog.Logger) []qsource.Source {
	var sources []qsource.Source

	if cfg.Feeds.Enabled && len(cfg.Feeds.Feeds) > 0 {
		feeds := make([]qsource.FeedSpec, len(cfg.Feeds.Feeds))
		for i, f := range cfg.Feeds.Feeds {
			feeds[i] = qsource.FeedSpec{Name: f.Name, URL: f.URL}
		}
		sources = append(sources, qsource.NewFeed(feeds, qsource.FeedOptions{
			Lookback: cfg.Feeds.ParseLookback(),
			Logger:   logger,
		}))
	}

	return sources
}

func buildNotifyManager(cfg *config.Config) *notify.Manager {
	var notifiers []notify.Notifier

	if cfg.Notify.Slack.Enabled && cfg.Notify.Slack.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewSlack(cfg.Notify.Slack.WebhookURL))
	}
	if cfg.Notify.Discord.Enabled && cfg.Notify.Discord.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewDiscord(cfg.Notify.Discord.WebhookURL))
	}
	if cfg.Notify.Webhook.Enabled && cfg.Notify.Webhook.URL != "" {
		notifiers = append(notifiers, notify.NewWebhook(cfg.Notify.Webhook.URL, cfg.Notify.Webhook.Secret))
	}

	return notify.NewManager(notifiers)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(res ingest.Result) {
	fmt.Printf("processed %d questions: %d new, %d duplicates, %d unclassified\n",
		res.TotalProcessed, res.NewQuestionsAdded, res.DuplicatesSkipped, res.UnclassifiedSkipped)
	if len(res.TopicsEnriched) > 0 {
		fmt.Printf("topics enriched: %s\n", strings.Join(res.TopicsEnriched, ", "))
	}
}

func runIngest(path string, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := cliLogger()
	pipeline, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}

	raws, err := qsource.NewFile("", path).Fetch(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "ingesting %d questions from %s...\n", len(raws), path)
	result, err := pipeline.Ingest(context.Background(), raws)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	if jsonOutput {
		return printJSON(result)
	}
	printResult(result)
	return nil
}

func runCollect() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := cliLogger()
	pipeline, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}

	sources := buildSources(cfg, logger)
	if len(sources) == 0 {
		return fmt.Errorf("no sources enabled (enable feeds in config)")
	}

	ctx := context.Background()
	var batch []question.Raw

	for _, src := range sources {
		fmt.Fprintf(os.Stderr, "collecting from %s...\n", src.Name())
		raws, err := src.Fetch(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  error: %v\n", err)
			continue
		}
		fmt.Fprintf(os.Stderr, "  fetched %d questions\n", len(raws))
		batch = append(batch, raws...)
	}

	if len(batch) == 0 {
		fmt.Println("nothing new to ingest")
		return nil
	}

	result, err := pipeline.Ingest(ctx, batch)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	printResult(result)
	return nil
}

func runTopics(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	svc, err := buildKnowledge(cfg, cliLogger())
	if err != nil {
		return err
	}
	topics := svc.KnowledgeBase()

	if jsonOutput {
		return printJSON(topics)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOPIC\tID\tCURATED\tSCRAPED\tKEY CONCEPTS")
	for _, tp := range topics {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			tp.Name, tp.ID, tp.StaticCount, tp.DynamicCount,
			strings.Join(tp.KeyConcepts, ", "))
	}
	return w.Flush()
}

func runTrending(jsonOutput bool, days int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	svc, err := buildKnowledge(cfg, cliLogger())
	if err != nil {
		return err
	}
	trending := svc.TrendingTopics(days)

	if jsonOutput {
		return printJSON(trending)
	}

	if len(trending) == 0 {
		fmt.Println("no scraped questions yet (try: careerintel collect)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RECENT\tTOTAL\tGROWTH\tTOPIC")
	for _, tr := range trending {
		fmt.Fprintf(w, "%d\t%d\t%.0f%%\t%s\n",
			tr.RecentCount, tr.TotalQuestions, tr.GrowthRate, tr.Name)
	}
	return w.Flush()
}

func runStats(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	svc, err := buildKnowledge(cfg, cliLogger())
	if err != nil {
		return err
	}
	stats := svc.Stats()

	if jsonOutput {
		return printJSON(stats)
	}

	fmt.Printf("topics: %d\n", stats.TotalTopics)
	fmt.Printf("questions: %d (%d curated, %d scraped)\n",
		stats.TotalQuestions, stats.StaticCount, stats.DynamicCount)
	fmt.Printf("sources: %s\n", strings.Join(stats.Sources, ", "))
	if stats.LastScrapedAt != nil {
		fmt.Printf("last scraped: %s\n", stats.LastScrapedAt.Format(time.RFC3339))
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COUNT\tTOPIC")
	for _, tc := range stats.TopicCounts {
		fmt.Fprintf(w, "%d\t%s\n", tc.Count, tc.Name)
	}
	return w.Flush()
}

func runPlan(days int, level string, focus []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	svc, err := buildKnowledge(cfg, cliLogger())
	if err != nil {
		return err
	}
	builder, err := plan.New(svc)
	if err != nil {
		return fmt.Errorf("build planner: %w", err)
	}

	p, err := builder.Build(context.Background(), plan.Options{
		Days:  days,
		Level: question.ParseDifficulty(level),
		Focus: focus,
	})
	if err != nil {
		return err
	}

	out, err := builder.Render(p)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func runSalaryImport(path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reports, err := salary.ImportCSV(f)
	if err != nil {
		return fmt.Errorf("import csv: %w", err)
	}
	if len(reports) == 0 {
		fmt.Println("no usable rows found")
		return nil
	}

	db, err := salarystore.New(cfg.Salary.DBPath)
	if err != nil {
		return fmt.Errorf("open salary db: %w", err)
	}
	defer db.Close()

	if err := db.InsertReports(context.Background(), reports); err != nil {
		return fmt.Errorf("store reports: %w", err)
	}

	fmt.Printf("imported %d salary reports into %s\n", len(reports), cfg.Salary.DBPath)
	return nil
}

func runSalaryStats(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := salarystore.New(cfg.Salary.DBPath)
	if err != nil {
		return fmt.Errorf("open salary db: %w", err)
	}
	defer db.Close()

	stats, err := db.RoleAggregates(context.Background())
	if err != nil {
		return fmt.Errorf("aggregate salaries: %w", err)
	}

	if jsonOutput {
		return printJSON(stats)
	}

	if len(stats) == 0 {
		fmt.Println("no salary reports yet (try: careerintel salary import <file.csv>)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tLEVEL\tCOUNT\tMIN\tMEDIAN\tMAX")
	for _, rs := range stats {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.0f\t%.0f\t%.0f\n",
			rs.Role, rs.Seniority, rs.Count, rs.Min, rs.Median, rs.Max)
	}
	return w.Flush()
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	logger := daemonLogger()
	pipeline, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	svc, err := buildKnowledge(cfg, logger)
	if err != nil {
		return err
	}

	srv := server.New(svc, pipeline, server.Options{Port: port, Logger: logger})
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	logger := daemonLogger()
	pipeline, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	svc, err := buildKnowledge(cfg, logger)
	if err != nil {
		return err
	}
	sources := buildSources(cfg, logger)
	mgr := buildNotifyManager(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(sources, pipeline, svc, mgr, scheduler.Options{
		CollectInterval: cfg.Schedule.ParseCollectInterval(),
		DigestInterval:  cfg.Schedule.ParseDigestInterval(),
		WindowDays:      cfg.Schedule.TrendWindowDays,
		Logger:          logger,
	})

	// Scheduler in the background; the HTTP server owns the foreground.
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "scheduler error: %v\n", err)
		}
	}()

	srv := server.New(svc, pipeline, server.Options{Port: port, Logger: logger})
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	return srv.ListenAndServe()
}
