package main

import (
	"fmt"
	"time"

	"PostItBot/internal/database"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all notes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, db, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close(db)

		notes, err := store.List(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(notes) == 0 {
			yellow.Fprintln(out, "No notes yet.")
			return nil
		}

		for _, note := range notes {
			submitter := "web"
			if note.TelegramUsername != nil {
				submitter = "@" + *note.TelegramUsername
			}
			cyan.Fprintf(out, "#%-5d ", note.ID)
			gray.Fprintf(out, "%s %-14s ", note.CreatedAt.Local().Format(time.DateTime), submitter)
			fmt.Fprintf(out, "%s\n", note.Question)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
