package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/basket/clearvue/internal/config"
	"github.com/basket/clearvue/internal/export"
	"github.com/basket/clearvue/internal/persistence"
)

func reportUsage() {
	fmt.Fprintln(os.Stderr, "usage: clearvue report list [-limit N]")
	fmt.Fprintln(os.Stderr, "       clearvue report show <id>")
	fmt.Fprintln(os.Stderr, "       clearvue report export <id> [-text]")
}

func runReportCommand(ctx context.Context, args []string) int {
	if len(args) == 0 {
		reportUsage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}
	store, err := persistence.Open(config.DBPath(cfg.HomeDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening report store: %v\n", err)
		return 1
	}
	defer store.Close()

	switch args[0] {
	case "list":
		return runReportList(ctx, store, args[1:])
	case "show":
		return runReportShow(ctx, store, args[1:])
	case "export":
		return runReportExport(ctx, store, args[1:])
	default:
		reportUsage()
		return 2
	}
}

func runReportList(ctx context.Context, store *persistence.Store, args []string) int {
	limit := 0
	for i := 0; i < len(args); i++ {
		if args[i] == "-limit" && i+1 < len(args) {
			fmt.Sscanf(args[i+1], "%d", &limit)
			i++
		}
	}

	summaries, err := store.ListReports(ctx, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing reports: %v\n", err)
		return 1
	}
	if len(summaries) == 0 {
		fmt.Println("No reports stored yet.")
		return 0
	}

	fmt.Printf("%-20s  %-19s  %-5s %-5s %-5s %-5s  %s\n", "ID", "COMPLETED", "PASS", "FAIL", "SKIP", "N/A", "DEVICE")
	for _, s := range summaries {
		fmt.Printf("%-20s  %-19s  %-5d %-5d %-5d %-5d  %s\n",
			s.ID,
			s.CompletedAt.Local().Format("2006-01-02 15:04:05"),
			s.PassCount, s.FailCount, s.SkippedCount, s.NotTestableCount,
			s.DeviceModel)
	}
	return 0
}

func runReportShow(ctx context.Context, store *persistence.Store, args []string) int {
	if len(args) != 1 {
		reportUsage()
		return 2
	}

	r, err := store.GetReport(ctx, args[0])
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "No report with id %q\n", args[0])
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error loading report: %v\n", err)
		return 1
	}

	fmt.Print(export.Summary(r))
	return 0
}

func runReportExport(ctx context.Context, store *persistence.Store, args []string) int {
	asText := false
	var id string
	for _, arg := range args {
		if arg == "-text" || arg == "--text" {
			asText = true
			continue
		}
		id = arg
	}
	if id == "" {
		reportUsage()
		return 2
	}

	r, err := store.GetReport(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "No report with id %q\n", id)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error loading report: %v\n", err)
		return 1
	}

	if asText {
		fmt.Print(export.Summary(r))
		return 0
	}
	if err := export.WriteJSON(os.Stdout, r); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting report: %v\n", err)
		return 1
	}
	return 0
}
