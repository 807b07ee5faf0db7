package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"argosync/lib/gemini"
	"argosync/lib/notion"
	"argosync/lib/scrapers/argo"
	"argosync/lib/serviceutil"
	"argosync/lib/snapshot"
	"argosync/services/summary"

	"github.com/spf13/cobra"
)

var summaryOffline *bool

func init() {
	summaryOffline = summaryCmd.Flags().Bool(
		"offline", false,
		"Summarize the last snapshot instead of fetching fresh data.",
	)
	rootCmd.AddCommand(summaryCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Generates an AI digest of the dashboard and writes it to a Notion page.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()

		if cfg.Gemini.ApiKey == "" {
			serviceutil.Fatal("gemini is not configured", errors.New("gemini.api_key is empty"))
		}
		store := openSnapshots(cfg)

		var dash *argo.Dashboard
		if *summaryOffline {
			if store == nil {
				serviceutil.Fatal("no snapshot db configured", errors.New("snapshots.file is empty"))
			}
			var err error
			var fetchedAt time.Time
			dash, fetchedAt, err = store.GetDashboard(ctx)
			if errors.Is(err, snapshot.ErrNotFound) {
				serviceutil.Fatal("no snapshot to summarize, run fetch first", err)
			}
			if err != nil {
				serviceutil.Fatal("failed to read snapshot", err)
			}
			slog.InfoContext(ctx, "summarizing snapshot", "fetched_at", fetchedAt)
		} else {
			dash = loadDashboard(ctx, newArgoClient(cfg), store)
		}

		service := summary.New(
			gemini.NewClient(gemini.Options{ApiKey: cfg.Gemini.ApiKey, Model: cfg.Gemini.Model}),
			notion.NewClient(notion.Options{Token: cfg.Notion.Token}),
			cfg.Notion.ParentPage,
		)
		pageId, err := service.Run(ctx, dash)
		if err != nil {
			serviceutil.Fatal("failed to generate summary", err)
		}
		fmt.Println("created summary page", pageId)
	},
}
