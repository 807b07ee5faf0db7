package commands

import (
	"log/slog"
	"os"

	"argosync/lib/notion"
	"argosync/lib/telemetry"
	"argosync/services/notify"
	"argosync/services/sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetches the dashboard and reconciles every category into Notion.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		telemetry.InstrumentPerfStats(ctx)
		cfg := readConfig()

		client := newArgoClient(cfg)
		store := openSnapshots(cfg)
		dash := loadDashboard(ctx, client, store)

		service := sync.New(notion.NewClient(notion.Options{Token: cfg.Notion.Token}))
		reports := service.Run(ctx, dash, sync.Categories(cfg.Notion.Databases))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"categoria", "creati", "saltati", "falliti"})
		var failed int
		for _, report := range reports {
			t.AppendRow(table.Row{report.Category, report.Created, report.Skipped, report.Failed})
			failed += report.Failed
		}
		t.Render()

		if cfg.Smtp.Enabled() {
			err := notify.SendRunReport(ctx, cfg.Smtp, reports)
			if err != nil {
				slog.WarnContext(ctx, "failed to mail run report", "err", err)
			}
		}

		if failed > 0 {
			slog.ErrorContext(ctx, "some records were not written", "failed", failed)
			os.Exit(1)
		}
	},
}
