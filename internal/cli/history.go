package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stock-notifier/internal/models"
	"stock-notifier/internal/store"
	"stock-notifier/pkg/utils"
)

func newHistoryCmd(app *App) *cobra.Command {
	var (
		limit int
		since time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history [ticker]",
		Short: "Show recent alert events",
		Args:  cobra.MaximumNArgs(1),
		Example: `  stock-notifier history
  stock-notifier history MSFT --limit 5
  stock-notifier history --since 24h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Config.Storage.DBPath == "" {
				return fmt.Errorf("storage.db_path is not set")
			}

			db, err := store.NewSQLiteStore(app.Config.Storage.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			filter := store.HistoryFilter{Limit: limit}
			if len(args) == 1 {
				filter.Ticker = strings.ToUpper(args[0])
			}
			if since > 0 {
				filter.Since = time.Now().Add(-since)
			}

			events, err := db.History(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(events)
			}
			if len(events) == 0 {
				output.Dim("No alerts recorded")
				return nil
			}

			table := NewTable(output, "TIME", "TICKER", "SIDE", "PRICE", "DAY LOW", "DAY HIGH")
			for _, ev := range events {
				side := output.Green(string(ev.Direction))
				if ev.Direction == models.DirectionBelow {
					side = output.Red(string(ev.Direction))
				}
				table.AddRow(
					ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
					ev.Ticker,
					side,
					utils.FormatPrice(ev.Snapshot.CurrentPrice),
					utils.FormatPrice(ev.Snapshot.DayLow),
					utils.FormatPrice(ev.Snapshot.DayHigh),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of events")
	cmd.Flags().DurationVar(&since, "since", 0, "only events newer than this (e.g. 24h)")

	return cmd
}
