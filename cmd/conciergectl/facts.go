package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	factsCmd := &cobra.Command{Use: "facts", Short: "Admin knowledge operations"}

	setCmd := &cobra.Command{
		Use:   "set FACT_TEXT",
		Short: "Store an admin fact (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPost("/api/facts", map[string]string{"fact": args[0]})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	factsCmd.AddCommand(setCmd)

	lookupCmd := &cobra.Command{
		Use:   "lookup QUERY",
		Short: "Show the override a query would match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/facts/lookup", map[string]string{"q": args[0]})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	factsCmd.AddCommand(lookupCmd)

	rootCmd.AddCommand(factsCmd)
}
