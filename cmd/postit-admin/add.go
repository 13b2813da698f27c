package main

import (
	"strings"

	"PostItBot/internal/database"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [question...]",
	Short: "Add an anonymous note",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, db, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close(db)

		note, err := store.Create(cmd.Context(), strings.Join(args, " "), nil, nil)
		if err != nil {
			return err
		}

		green.Fprintf(cmd.OutOrStdout(), "Note created: #%d (%s)\n", note.ID, note.Color)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
