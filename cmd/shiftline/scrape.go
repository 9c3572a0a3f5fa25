package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/shiftline/internal/controller"
	"github.com/amishk599/shiftline/internal/model"
	"github.com/amishk599/shiftline/internal/report"
	"github.com/amishk599/shiftline/internal/store"
)

var (
	noSave   bool
	maxPages int
	maxJobs  int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <employer-slug>",
	Short: "Run ingestion for one employer",
	Long: "Fetches, normalizes and stores the nursing postings of one employer. " +
		"With --no-save nothing is written and a sample report is printed instead.",
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().BoolVar(&noSave, "no-save", false, "dry run: validate and report without writing")
	scrapeCmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after N listing pages (0 = no limit)")
	scrapeCmd.Flags().IntVar(&maxJobs, "max-jobs", 0, "stop after N listings (0 = no limit)")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sum, runErr := d.runEmployer(ctx, args[0], controller.Options{
		DryRun:   noSave,
		MaxPages: maxPages,
		MaxJobs:  maxJobs,
	})
	if sum.Employer == "" {
		return runErr
	}

	reporters := report.Multi{report.NewConsole(os.Stdout)}
	if !noSave {
		reporters = append(reporters, setupReporter(cfg, d.httpClient, logger))
	}
	if err := reporters.Report(sum); err != nil {
		logger.Error("report failed", "error", err)
	}
	return runErr
}
