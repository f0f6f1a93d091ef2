package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"stock-notifier/internal/market"
	"stock-notifier/internal/quote"
	"stock-notifier/pkg/utils"
)

func newQuoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quote <ticker>",
		Short: "Fetch and print the current quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			output := NewOutput(cmd)

			sym, err := app.resolver().Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			provider, err := app.provider()
			if err != nil {
				return err
			}
			snap, err := provider.Fetch(ctx, sym.Ticker)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(snap)
			}

			cal := market.NewCalendars().For(sym.Ticker)
			status := output.Green("OPEN")
			if !cal.IsOpen(snap.FetchedAt) {
				status = output.Red("CLOSED")
			}

			output.Bold("%s", sym)
			output.Printf("  Current Price: %s\n", utils.FormatPrice(snap.CurrentPrice))
			output.Printf("  Day Low:       %s\n", utils.FormatPrice(snap.DayLow))
			output.Printf("  Day High:      %s\n", utils.FormatPrice(snap.DayHigh))
			if snap.DayLow > 0 {
				output.Printf("  From Low:      %s\n", utils.FormatPercent(utils.PercentFrom(snap.CurrentPrice, snap.DayLow)))
			}
			output.Printf("  Market:        %s (%s)\n", status, cal.MIC)
			output.Dim("  via %s at %s", provider.Name(), snap.FetchedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newLookupCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <company>",
		Short: "Resolve a company name to its ticker",
		Example: `  stock-notifier lookup microsoft
  stock-notifier lookup "Samsung Electronics"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			query := strings.Join(args, " ")

			sym, err := app.resolver().Resolve(cmd.Context(), query)
			if err != nil {
				output.Error("Invalid company name. Please choose from the available list.")
				return err
			}

			if output.IsJSON() {
				return output.JSON(sym)
			}
			output.Println(sym.String())
			return nil
		},
	}
}

func newCompaniesCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "companies",
		Short:       "List the built-in company directory",
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			companies := quote.Companies()
			if output.IsJSON() {
				return output.JSON(companies)
			}

			table := NewTable(output, "COMPANY", "TICKER", "EXCHANGE")
			for _, c := range companies {
				table.AddRow(c.Name, c.Ticker, market.MIC(c.Ticker))
			}
			table.Render()
			return nil
		},
	}
}
