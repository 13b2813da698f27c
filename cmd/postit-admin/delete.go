package main

import (
	"errors"
	"fmt"
	"strconv"

	"PostItBot/internal/database"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 0)
		if err != nil {
			return fmt.Errorf("invalid note id %q", args[0])
		}

		store, db, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close(db)

		note, err := store.Delete(cmd.Context(), uint(id))
		if errors.Is(err, database.ErrNoteNotFound) {
			return fmt.Errorf("note #%d not found", id)
		}
		if err != nil {
			return err
		}

		green.Fprintf(cmd.OutOrStdout(), "Note deleted: #%d\n", note.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
