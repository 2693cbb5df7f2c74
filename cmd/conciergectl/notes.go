package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	notesCmd := &cobra.Command{Use: "notes", Short: "Scratchpad note operations"}

	var addTitle string
	addCmd := &cobra.Command{
		Use:   "add CONTENT",
		Short: "Create a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPost("/api/notes", map[string]string{"title": addTitle, "content": args[0]})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Optional note title")
	notesCmd.AddCommand(addCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/notes", nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	notesCmd.AddCommand(listCmd)

	var editTitle string
	editCmd := &cobra.Command{
		Use:   "edit NOTE_ID CONTENT",
		Short: "Rewrite a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPut("/api/notes/"+args[0], map[string]string{"title": editTitle, "content": args[1]})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "Optional note title")
	notesCmd.AddCommand(editCmd)

	rmCmd := &cobra.Command{
		Use:   "rm NOTE_ID",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doDelete("/api/notes/" + args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	notesCmd.AddCommand(rmCmd)

	rootCmd.AddCommand(notesCmd)
}
