package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	remindersCmd := &cobra.Command{Use: "reminders", Short: "Reminder operations"}

	var user string
	var dueOnly bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List pending reminders for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return fmt.Errorf("--user required")
			}
			query := map[string]string{}
			if dueOnly {
				query["due"] = "1"
			}
			data, err := doGet(fmt.Sprintf("/api/users/%s/reminders", user), query)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	listCmd.Flags().StringVarP(&user, "user", "u", "", "User ID (required)")
	listCmd.Flags().BoolVar(&dueOnly, "due", false, "Only reminders whose due time has passed")
	_ = listCmd.MarkFlagRequired("user")
	remindersCmd.AddCommand(listCmd)

	var completeUser string
	completeCmd := &cobra.Command{
		Use:   "complete REMINDER_ID",
		Short: "Acknowledge a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if completeUser == "" {
				return fmt.Errorf("--user required")
			}
			data, err := doPost(fmt.Sprintf("/api/users/%s/reminders/%s/complete", completeUser, args[0]), nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	completeCmd.Flags().StringVarP(&completeUser, "user", "u", "", "User ID (required)")
	_ = completeCmd.MarkFlagRequired("user")
	remindersCmd.AddCommand(completeCmd)

	rootCmd.AddCommand(remindersCmd)
}
