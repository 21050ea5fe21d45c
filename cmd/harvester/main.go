package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"daybrief/harvester/internal/config"
	"daybrief/harvester/internal/harvest"
	"daybrief/harvester/internal/report"
	"daybrief/harvester/internal/storage"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	cfg := config.DefaultConfig()

	runCmd := flag.NewFlagSet("run", flag.ExitOnError)
	runCmd.IntVar(&cfg.TargetCount, "count", config.GetEnvInt("TARGET_ARTICLE_COUNT", config.DefaultTargetCount),
		"Target number of articles per harvest (env: TARGET_ARTICLE_COUNT)")
	runCmd.StringVar(&cfg.MongoURI, "mongo", config.GetEnvString("MONGODB_URI", config.DefaultMongoURI),
		"MongoDB connection URI (env: MONGODB_URI)")
	runCmd.StringVar(&cfg.SnapshotDir, "out", config.GetEnvString("SNAPSHOT_DIR", config.DefaultSnapshotDir),
		"Directory for JSON snapshot files (env: SNAPSHOT_DIR)")
	runCmd.StringVar(&cfg.CronSpec, "cron", config.GetEnvString("HARVEST_CRON", ""),
		"Cron spec for periodic harvesting, empty for one-shot (env: HARVEST_CRON)")
	runCmd.IntVar(&cfg.WorkerCount, "workers", config.GetEnvInt("HARVEST_WORKERS", config.DefaultWorkerCount),
		"Number of concurrent source fetches (env: HARVEST_WORKERS)")

	var feedsPath string
	runCmd.StringVar(&feedsPath, "feeds", config.GetEnvString("HARVEST_FEEDS_FILE", ""),
		"Optional file of feed URLs replacing the built-in list (env: HARVEST_FEEDS_FILE)")

	var runLogLevelStr string
	runCmd.StringVar(&runLogLevelStr, "log-level", config.GetEnvString("LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: LOG_LEVEL)")

	purgeCmd := flag.NewFlagSet("purge", flag.ExitOnError)
	purgeCmd.StringVar(&cfg.MongoURI, "mongo", config.GetEnvString("MONGODB_URI", config.DefaultMongoURI),
		"MongoDB connection URI (env: MONGODB_URI)")
	purgeCmd.IntVar(&cfg.RetentionMonths, "months", config.GetEnvInt("CLEANUP_MONTHS_OLD", config.DefaultRetentionMonths),
		"Delete articles captured more than this many months ago (env: CLEANUP_MONTHS_OLD)")

	var dryRun bool
	purgeCmd.BoolVar(&dryRun, "dry-run", false,
		"Report what would be deleted without deleting")

	var purgeLogLevelStr string
	purgeCmd.StringVar(&purgeLogLevelStr, "log-level", config.GetEnvString("LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: LOG_LEVEL)")

	statusCmd := flag.NewFlagSet("status", flag.ExitOnError)
	statusCmd.StringVar(&cfg.MongoURI, "mongo", config.GetEnvString("MONGODB_URI", config.DefaultMongoURI),
		"MongoDB connection URI (env: MONGODB_URI)")

	var statusDays int
	statusCmd.IntVar(&statusDays, "days", 7,
		"Window in days for the recent-article count")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runCmd.Parse(os.Args[2:])

		if level, err := zerolog.ParseLevel(runLogLevelStr); err == nil {
			cfg.LogLevel = level
		}
		zerolog.SetGlobalLevel(cfg.LogLevel)

		if feedsPath != "" {
			if err := cfg.LoadFeedsFile(feedsPath); err != nil {
				log.Error().Err(err).Str("path", feedsPath).Msg("Failed to load feeds file")
				os.Exit(1)
			}
			log.Info().Int("feeds", len(cfg.Feeds)).Str("path", feedsPath).Msg("Loaded feed list")
		}

		if err := runHarvest(cfg); err != nil {
			log.Error().Err(err).Msg("Harvest failed")
			os.Exit(1)
		}

	case "purge":
		purgeCmd.Parse(os.Args[2:])

		if level, err := zerolog.ParseLevel(purgeLogLevelStr); err == nil {
			cfg.LogLevel = level
		}
		zerolog.SetGlobalLevel(cfg.LogLevel)

		if err := runPurge(cfg, dryRun); err != nil {
			log.Error().Err(err).Msg("Purge failed")
			os.Exit(1)
		}

	case "status":
		statusCmd.Parse(os.Args[2:])

		if err := runStatus(cfg, statusDays); err != nil {
			log.Error().Err(err).Msg("Status check failed")
			os.Exit(1)
		}

	case "-h", "--help", "help":
		printUsage()
		os.Exit(0)

	default:
		log.Error().Str("command", os.Args[1]).Msg("Unknown command")
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: harvester [command] [options]")
	fmt.Println("Commands: run, purge, status")
	fmt.Println("\nFor command-specific options, use: harvester [command] -h")
}

// runHarvest executes harvest cycles either once or on a cron schedule.
func runHarvest(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-shutdown
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	if cfg.CronSpec == "" {
		log.Info().Msg("Running in one-shot mode")
		return runCycle(ctx, cfg)
	}

	c := cron.New()
	_, err := c.AddFunc(cfg.CronSpec, func() {
		if err := runCycle(ctx, cfg); err != nil {
			log.Error().Err(err).Msg("Scheduled harvest cycle failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", cfg.CronSpec, err)
	}

	log.Info().Str("cron", cfg.CronSpec).Msg("Running in periodic mode")
	c.Start()

	<-ctx.Done()
	log.Info().Msg("Stopping scheduler")
	<-c.Stop().Done()
	return nil
}

// runCycle performs one full harvest: optional auto-purge, scrape, report,
// persist. An unreachable store never fails the cycle; the snapshot path
// still carries the output.
func runCycle(ctx context.Context, cfg *config.Config) error {
	store, err := storage.Connect(ctx, cfg.MongoURI, cfg.Database, cfg.Collection)
	if err != nil {
		log.Warn().Err(err).Msg("Storage unavailable, continuing without persistence")
		store = nil
	} else {
		defer store.Close(ctx)

		if err := store.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("Index creation failed, continuing")
		}

		if cfg.AutoPurge {
			if _, err := store.PurgeOlderThan(ctx, cfg.RetentionMonths, false); err != nil {
				log.Warn().Err(err).Msg("Auto-purge failed, continuing")
			}
		}
	}

	harvester := harvest.New(cfg)
	articles := harvester.Run(ctx)

	if topics := harvester.TrendingTopics(ctx); len(topics) > 0 {
		log.Info().Strs("topics", topics).Msg("Trending topics right now")
	}

	if len(articles) == 0 {
		log.Warn().Msg("Harvest produced no articles")
		return nil
	}

	report.Print(os.Stdout, articles)

	if _, err := report.WriteSnapshot(articles, cfg.SnapshotDir); err != nil {
		log.Error().Err(err).Msg("Failed to write snapshot")
	}

	if store != nil {
		if _, err := store.SaveArticles(ctx, articles); err != nil {
			log.Error().Err(err).Msg("Failed to save articles")
		}
	}

	return ctx.Err()
}

// runPurge executes the housekeeping purge against the store.
func runPurge(cfg *config.Config, dryRun bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.Connect(ctx, cfg.MongoURI, cfg.Database, cfg.Collection)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	result, err := store.PurgeOlderThan(ctx, cfg.RetentionMonths, dryRun)
	if err != nil {
		return err
	}

	if result.DryRun {
		fmt.Printf("Dry run: %d articles older than %s would be deleted\n",
			result.Matched, result.Cutoff.Format("2006-01-02"))
		for _, sample := range result.Samples {
			fmt.Printf("  - %s (%s) - %s\n",
				sample.Title, sample.Source, sample.ScrapedAt.Format("2006-01-02"))
		}
		return nil
	}

	fmt.Printf("Deleted %d articles older than %s, %d remaining\n",
		result.Deleted, result.Cutoff.Format("2006-01-02"), result.Remaining)
	return nil
}

// runStatus reports collection totals and the freshest captures.
func runStatus(cfg *config.Config, days int) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.Connect(ctx, cfg.MongoURI, cfg.Database, cfg.Collection)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	total, err := store.Count(ctx)
	if err != nil {
		return err
	}

	recent, err := store.RecentArticles(ctx, days, 5)
	if err != nil {
		return err
	}

	fmt.Printf("Total articles: %d\n", total)
	fmt.Printf("Newest captures (last %d days):\n", days)
	for _, article := range recent {
		fmt.Printf("  - %s (%s) - %s\n",
			article.Title, article.Source, article.ScrapedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
