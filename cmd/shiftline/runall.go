package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/shiftline/internal/controller"
	"github.com/amishk599/shiftline/internal/model"
	"github.com/amishk599/shiftline/internal/scheduler"
	"github.com/amishk599/shiftline/internal/store"
)

var watch bool

var runAllCmd = &cobra.Command{
	Use:   "run-all",
	Short: "Run ingestion for every enabled employer",
	Long:  "Runs every enabled employer once, or on schedule.interval with --watch until SIGINT/SIGTERM.",
	RunE:  runAll,
}

func init() {
	runAllCmd.Flags().BoolVar(&noSave, "no-save", false, "dry run: validate and report without writing")
	runAllCmd.Flags().BoolVar(&watch, "watch", false, "keep running on schedule.interval")
	rootCmd.AddCommand(runAllCmd)
}

func runAll(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var st model.JobStore = store.NewNopStore()
	if !noSave {
		s, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		st = s
	}
	d := newDeps(cfg, st, logger)

	var slugs []string
	for _, e := range cfg.Enabled() {
		slugs = append(slugs, e.Slug)
	}
	logger.Info("config loaded",
		"employers", len(slugs),
		"concurrency", cfg.Schedule.Concurrency,
		"interval", cfg.Schedule.Interval.String(),
		"dry_run", noSave,
	)

	opts := controller.Options{DryRun: noSave}
	run := func(ctx context.Context, slug string) (model.Summary, error) {
		return d.runEmployer(ctx, slug, opts)
	}
	sched := scheduler.NewScheduler(slugs, run, setupReporter(cfg, d.httpClient, logger),
		cfg.Schedule.Concurrency, cfg.Schedule.Interval, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if watch {
		if err := sched.Run(ctx); err != nil {
			return err
		}
		logger.Info("goodbye")
		return nil
	}

	failed := 0
	for _, r := range sched.RunOnce(ctx) {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d employers failed", failed, len(slugs))
	}
	return nil
}
