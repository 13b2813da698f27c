package main

import (
	"fmt"
	"time"

	"PostItBot/internal/database"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show note statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, db, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close(db)

		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}

		last := "never"
		if stats.LastNote != nil {
			last = stats.LastNote.Local().Format(time.DateTime)
		}

		out := cmd.OutOrStdout()
		cyan.Fprintf(out, "Total notes: ")
		fmt.Fprintf(out, "%d\n", stats.TotalNotes)
		cyan.Fprintf(out, "Users:       ")
		fmt.Fprintf(out, "%d\n", stats.TotalUsers)
		cyan.Fprintf(out, "Last note:   ")
		fmt.Fprintf(out, "%s\n", last)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
