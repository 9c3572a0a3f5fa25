package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/shiftline/internal/browse"
	"github.com/amishk599/shiftline/internal/controller"
	"github.com/amishk599/shiftline/internal/model"
	"github.com/amishk599/shiftline/internal/store"
)

// browseSampleSize keeps every record of a typical board for viewing.
const browseSampleSize = 500

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively dry-run an employer and inspect its records",
	Long:  "Pick an employer, dry-run it, then page through the normalized records and breakdowns. Nothing is written.",
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().IntVar(&maxJobs, "max-jobs", 0, "stop after N listings (0 = no limit)")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	// Logs would tear the TUI; keep only errors.
	logger := quietLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	enabled := cfg.Enabled()
	if len(enabled) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No enabled employers in config.")
		return nil
	}
	d := newDeps(cfg, store.NewNopStore(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		idx, err := browse.PickEmployer(enabled)
		if err != nil {
			return err
		}
		if idx < 0 {
			return nil
		}
		e := enabled[idx]

		opts := controller.Options{DryRun: true, MaxJobs: maxJobs, SampleSize: browseSampleSize}
		sum, err := browse.RunLoader(ctx, e.Name, func(ctx context.Context) (model.Summary, error) {
			return d.runEmployer(ctx, e.Slug, opts)
		})
		if err != nil && !errors.Is(err, browse.ErrCancelled) {
			if sum.Employer == "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", e.Slug, err)
				continue
			}
			logger.Error("dry run incomplete", "employer", e.Slug, "error", err)
		}
		if sum.Employer == "" {
			continue
		}

		quit, err := browse.View(sum)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}
