package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/qareview/internal/config"
	"github.com/kalambet/qareview/internal/format"
	"github.com/kalambet/qareview/internal/kb"
	"github.com/kalambet/qareview/internal/storage"
)

// backend is the part of the knowledge-base API the reporting commands use.
type backend interface {
	MonthlyStats(ctx context.Context, year, month int) (map[string]int, error)
	CheckDuplicates(ctx context.Context, threshold float64) (kb.DuplicateReport, error)
}

var newBackend = func() (backend, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, fmt.Errorf("loading config: %w", err)
	}
	return kb.New(cfg.Backend.BaseURL, nil), cfg, nil
}

// --- history ---

type journalRow struct {
	ID               string `json:"id"`
	At               string `json:"at"`
	Kind             string `json:"kind"`
	Scope            string `json:"scope"`
	SegmentID        string `json:"segment_id"`
	TargetDocumentID string `json:"target_document_id"`
	Outcome          string `json:"outcome"`
	Error            string `json:"error"`
	Detail           string `json:"detail"`
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent review actions sent to the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit < 1 {
			return fmt.Errorf("--limit must be positive")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		rows, err := fetchHistory(cmd.Context(), client, limit)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			printWarning("No actions recorded yet")
			return nil
		}
		for _, r := range rows {
			fmt.Println(historyLine(r))
		}
		return nil
	},
}

func fetchHistory(ctx context.Context, client *apiClient, limit int) ([]journalRow, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := client.get(ctx, "/journal?limit="+strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	var rows []journalRow
	if err := decodeJSON(resp, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func historyLine(r journalRow) string {
	outcome := colorize(colorGreen, r.Outcome)
	if r.Outcome != storage.OutcomeOK {
		outcome = colorize(colorRed, r.Outcome)
	}
	line := fmt.Sprintf("%s  %-7s %-10s %s %s", r.At, r.Kind, r.Scope, outcome, r.SegmentID)
	switch {
	case r.TargetDocumentID != "":
		line += " -> " + r.TargetDocumentID
	case r.Detail != "":
		line += " " + r.Detail
	}
	if r.Error != "" {
		line += "  (" + r.Error + ")"
	}
	return line
}

func init() {
	historyCmd.Flags().Int("limit", 20, "number of entries to show")
}

// --- stats ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the monthly review calendar",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, cfg, err := newBackend()
		if err != nil {
			return err
		}
		now := time.Now().In(cfg.Console.Location())
		year, _ := cmd.Flags().GetInt("year")
		month, _ := cmd.Flags().GetInt("month")
		if year == 0 {
			year = now.Year()
		}
		if month == 0 {
			month = int(now.Month())
		}
		if month < 1 || month > 12 {
			return fmt.Errorf("--month must be between 1 and 12")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		stats, err := gw.MonthlyStats(ctx, year, month)
		if err != nil {
			return fmt.Errorf("fetching monthly stats: %w", err)
		}
		writeCalendar(os.Stdout, year, time.Month(month), stats, now)
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("year", 0, "calendar year (default current)")
	statsCmd.Flags().Int("month", 0, "calendar month 1-12 (default current)")
}

// --- duplicates ---

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Check reviewed QA pairs for duplicates",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, cfg, err := newBackend()
		if err != nil {
			return err
		}
		threshold := cfg.Console.DuplicateThreshold
		if cmd.Flags().Changed("threshold") {
			threshold, _ = cmd.Flags().GetInt("threshold")
		}
		if threshold < 0 || threshold > 100 {
			return fmt.Errorf("--threshold must be between 0 and 100")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		printStep("Checking duplicates at %d%%...", threshold)
		report, err := gw.CheckDuplicates(ctx, float64(threshold)/100)
		if err != nil {
			return fmt.Errorf("checking duplicates: %w", err)
		}
		printReport(report, cfg.Console.Location())
		return nil
	},
}

func printReport(report kb.DuplicateReport, loc *time.Location) {
	if len(report.Groups) == 0 {
		printSuccess("没有发现重复QA！")
		return
	}
	fmt.Printf("发现 %d 组重复，共 %d 条\n", report.TotalGroups, report.TotalDuplicates)
	for _, g := range report.Groups {
		fmt.Printf("\n%s\n", colorize(colorBold, fmt.Sprintf("组 %d  (%d 条, 相似度 %.0f%%)", g.GroupID, g.Count, g.Similarity*100)))
		for _, it := range g.Items {
			fmt.Printf("  [%s] %s  %s\n", it.DocumentName, it.SegmentID, format.DateTime(int64(it.UpdatedAt), loc))
			fmt.Printf("    问: %s\n", it.Question)
		}
	}
}

func init() {
	duplicatesCmd.Flags().Int("threshold", 0, "similarity threshold in percent (default from config)")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
