package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/shiftline/internal/store"
)

var employersCmd = &cobra.Command{
	Use:   "employers",
	Short: "List all configured employers",
	Long:  "Reads the config and prints a table of all configured employers, with stored job counts when the store is SQLite.",
	RunE:  runEmployers,
}

func init() {
	rootCmd.AddCommand(employersCmd)
}

func runEmployers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var counts map[string]int
	if cfg.Store.Driver == "sqlite" {
		if s, err := store.NewSQLiteStore(cfg.Store.Path); err == nil {
			counts, _ = s.JobCounts(context.Background())
			s.Close()
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-28s %-25s %-11s %-9s %s\n", "Slug", "Name", "ATS", "Status", "Jobs")
	fmt.Fprintln(out, strings.Repeat("─", 80))

	enabled, disabled := 0, 0
	for _, e := range cfg.Employers {
		status := "enabled"
		if e.Enabled {
			enabled++
		} else {
			status = "disabled"
			disabled++
		}
		jobs := "-"
		if n, ok := counts[e.Slug]; ok {
			jobs = fmt.Sprint(n)
		}
		fmt.Fprintf(out, "%-28s %-25s %-11s %-9s %s\n", e.Slug, e.Name, e.ATS, status, jobs)
	}

	fmt.Fprintf(out, "\nTotal: %d employers (%d enabled, %d disabled)\n", len(cfg.Employers), enabled, disabled)
	return nil
}
