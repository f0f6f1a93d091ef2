// Package cli provides the command-line interface for the stock notifier.
package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"stock-notifier/internal/config"
	"stock-notifier/internal/logging"
	"stock-notifier/internal/quote"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-03-01"
)

// skipConfig marks commands that run without loading config.toml.
const skipConfig = "skip-config"

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
}

// NewRootCmd creates the root command for the CLI.
// A pre-set app.Config is used as is; otherwise it is loaded from --config.
func NewRootCmd(app *App) *cobra.Command {
	if app == nil {
		app = &App{}
	}
	app.Logger = zerolog.Nop()

	rootCmd := &cobra.Command{
		Use:   "stock-notifier",
		Short: "Stock price threshold alerts",
		Long: `Stock Notifier polls stock quotes and alerts you when a price leaves
the band you set.

Alerts go to the console, desktop notifications and, when configured,
email, webhooks and Telegram. Every alert is appended to an event log and
an SQLite history.

Use 'stock-notifier run' to start monitoring.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/stock-notifier)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newCheckCmd(app))
	rootCmd.AddCommand(newQuoteCmd(app))
	rootCmd.AddCommand(newLookupCmd(app))
	rootCmd.AddCommand(newCompaniesCmd())
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newExamplesCmd())

	return rootCmd
}

func (app *App) init(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("config")
	if dir == "" {
		dir = app.ConfigDir
	}
	if dir == "" {
		dir = config.DefaultConfigDir()
	}
	app.ConfigDir = dir

	if cmd.Annotations[skipConfig] != "" {
		return nil
	}

	if app.Config == nil {
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		app.Config = cfg
	}

	level := app.Config.Log.Level
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = "debug"
	}
	app.Logger = logging.NewLoggerWithConfig(logging.LogConfig{
		Level:      level,
		Console:    true,
		Out:        cmd.ErrOrStderr(),
		File:       app.Config.Log.File,
		FilePath:   app.Config.Log.Path,
		MaxSize:    20,
		MaxBackups: 5,
		MaxAge:     30,
	})
	app.Logger.Debug().Str("config_dir", dir).Msg("Configuration loaded")
	return nil
}

func (app *App) provider() (quote.Provider, error) {
	return quote.New(app.Config.Provider, app.Config.Credentials.Kite)
}

func (app *App) resolver() *quote.Resolver {
	return quote.NewResolver(quote.ResolverConfig{
		SearchEnabled: app.Config.Provider.SearchEnabled,
		SearchBaseURL: app.Config.Provider.SearchBaseURL,
		Timeout:       app.Config.Provider.Timeout,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("Stock Notifier v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate the application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			redacted := app.Config.Redacted()
			if output.IsJSON() {
				return output.JSON(redacted)
			}
			data, err := yaml.Marshal(redacted)
			if err != nil {
				return err
			}
			output.Printf("%s", data)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:         "path",
		Short:       "Show configuration directory path",
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"dir":         app.ConfigDir,
					"config":      filepath.Join(app.ConfigDir, "config.toml"),
					"credentials": filepath.Join(app.ConfigDir, "credentials.toml"),
				})
			}
			output.Println(app.ConfigDir)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("Configuration is valid")
			return nil
		},
	})

	return cmd
}
