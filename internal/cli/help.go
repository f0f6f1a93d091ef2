package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "examples",
		Short:       "Show common workflow examples",
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Common Workflow Examples")
			output.Println()

			examples := []struct {
				title    string
				commands []string
			}{
				{
					title: "First Run",
					commands: []string{
						"stock-notifier companies          # See the built-in directory",
						"stock-notifier run                # Answer the prompts and start",
					},
				},
				{
					title: "Monitor From Flags",
					commands: []string{
						"stock-notifier lookup tesla       # Find the ticker",
						"stock-notifier quote TSLA         # Check the current price",
						"stock-notifier run -s TSLA --lower 150 --upper 300 -i 60",
						"stock-notifier run -s Apple -s 005930.KS --upper 200",
					},
				},
				{
					title: "Email Alerts",
					commands: []string{
						"stock-notifier config path        # Find credentials.toml",
						"stock-notifier run -s MSFT --upper 450 --email me@example.com",
					},
				},
				{
					title: "Review Alerts",
					commands: []string{
						"stock-notifier history            # Latest alerts",
						"stock-notifier history MSFT -n 5  # Latest five for one ticker",
						"stock-notifier check MSFT --lower 400 # One round, no loop",
					},
				},
			}

			for _, ex := range examples {
				output.Bold(ex.title)
				for _, c := range ex.commands {
					parts := strings.SplitN(c, "#", 2)
					if len(parts) == 2 {
						output.Printf("  %s %s\n", output.Cyan(strings.TrimSpace(parts[0])), output.DimText(strings.TrimSpace(parts[1])))
					} else {
						output.Printf("  %s\n", output.Cyan(c))
					}
				}
				output.Println()
			}

			return nil
		},
	}
}
