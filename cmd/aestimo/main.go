// -----------------------------------------------------------------------
// Aestimo - Assessment job worker
// -----------------------------------------------------------------------

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/aestimo/internal/api"
	"github.com/ternarybob/aestimo/internal/assess"
	"github.com/ternarybob/aestimo/internal/common"
	"github.com/ternarybob/aestimo/internal/journal"
	"github.com/ternarybob/aestimo/internal/regional"
	"github.com/ternarybob/aestimo/internal/worker"
	"github.com/ternarybob/aestimo/internal/workers"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
	historyCount = flag.Int("history", 0, "Print the N most recent job records and exit")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Aestimo version %s\n", common.GetVersion())
		os.Exit(0)
	}

	os.Exit(run())
}

func run() int {
	common.InstallCrashHandler("")
	defer func() {
		if r := recover(); r != nil {
			common.WriteCrashFile(r, common.GetStackTrace())
			panic(r)
		}
	}()

	// Startup sequence: config, logger, banner, observability, collaborators.
	config, err := common.LoadConfig(configFiles...)
	if err != nil {
		arbor.NewLogger().Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	if err := common.InitObservability(config); err != nil {
		logger.Warn().Err(err).Msg("Observability init failed, continuing without it")
	}
	defer common.FlushObservability()

	if *historyCount > 0 {
		return printHistory(config, logger, *historyCount)
	}

	var engine assess.Engine
	if config.NeedsRegionalData() {
		engine, err = assess.Default()
		if err != nil {
			logger.Error().Err(err).Msg("Configured job types require an assessment engine")
			return 1
		}
	}

	apiClient := api.NewClient(config.APIEndpoint, config.Username, config.Password, api.WithLogger(logger))
	provider := regional.NewProvider(engine, config.DataPath, logger)

	registry := worker.NewRegistry(logger)
	workers.RegisterAll(registry)

	jrnl, err := journal.Open(filepath.Join(config.CachePath, "journal"), logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Job journal unavailable, continuing without history")
		jrnl = nil
	} else {
		defer jrnl.Close()
	}

	opts := worker.Options{
		Config:      config,
		API:         apiClient,
		Registry:    registry,
		Engine:      engine,
		Regional:    provider,
		ReportError: common.CaptureError,
		Logger:      logger,
	}
	if jrnl != nil {
		opts.Journal = jrnl
	}
	w := worker.New(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("Worker startup failed")
		return 1
	}

	if err := w.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Worker exited with error")
		return 1
	}
	return 0
}

func printHistory(config *common.WorkerConfig, logger arbor.ILogger, limit int) int {
	jrnl, err := journal.Open(filepath.Join(config.CachePath, "journal"), logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open job journal")
		return 1
	}
	defer jrnl.Close()

	records, err := jrnl.Recent(limit)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read job journal")
		return 1
	}

	for _, rec := range records {
		line := fmt.Sprintf("%s  %-26s %-24s %-9s %s",
			rec.FinishedAt.Format("2006-01-02 15:04:05"),
			rec.Type, rec.AssignmentID, rec.Status, rec.Duration())
		if rec.ErrorMessage != "" {
			line += "  " + rec.ErrorKind + ": " + rec.ErrorMessage
		}
		fmt.Println(line)
	}
	return 0
}
