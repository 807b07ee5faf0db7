package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Logs into the portal and prints what a sync would see, without writing to Notion.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()

		client := newArgoClient(cfg)
		store := openSnapshots(cfg)
		dash := loadDashboard(ctx, client, store)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"categoria", "record"})
		t.AppendRows([]table.Row{
			{"voti", len(dash.Voti)},
			{"promemoria", len(dash.Promemoria)},
			{"registro", len(dash.Registro)},
			{"appello", len(dash.Appello)},
			{"bacheca", len(dash.Bacheca)},
		})
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"orario", len(dash.Orario)},
			{"corsi recupero", len(dash.CorsiRecupero)},
			{"voti scrutinio", len(dash.VotiScrutinio)},
			{"ricevimenti", len(dash.Ricevimenti)},
			{"curriculum", len(dash.Curriculum)},
		})
		t.Render()
	},
}
