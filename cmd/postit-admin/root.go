package main

import (
	"fmt"
	"log/slog"
	"os"

	"PostItBot/internal/config"
	"PostItBot/internal/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	verbose bool
	dbPath  string

	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	gray   = color.New(color.FgHiBlack)
)

var rootCmd = &cobra.Command{
	Use:   "postit-admin",
	Short: "Inspect and manage the Post-it notes database",
	Long: `postit-admin works directly on the notes database used by the bot and
the HTTP API. It reads the same environment (and .env file) as the server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(config.NewLogger(os.Stderr, config.LogConfig{Level: level, Format: "text"}))
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database file (overrides DB_PATH)")
}

// openStore opens the configured database. The caller must close the
// returned *gorm.DB.
func openStore() (*database.NoteStore, *gorm.DB, error) {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = dbPath
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return database.NewNoteStore(db), db, nil
}
