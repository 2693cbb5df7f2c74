package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	budgetCmd := &cobra.Command{Use: "budget", Short: "Budget ledger operations"}

	summaryCmd := &cobra.Command{
		Use:   "summary ORG",
		Short: "Show totals and recent entries for an org (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("/api/budget/%s/summary", args[0]), nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	budgetCmd.AddCommand(summaryCmd)

	var category string
	entriesCmd := &cobra.Command{
		Use:   "entries ORG",
		Short: "List entries for an org (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := map[string]string{}
			if category != "" {
				query["category"] = category
			}
			data, err := doGet(fmt.Sprintf("/api/budget/%s/entries", args[0]), query)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	entriesCmd.Flags().StringVarP(&category, "category", "c", "", "Filter by category")
	budgetCmd.AddCommand(entriesCmd)

	var org, recCategory, duration string
	var amount float64
	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Append a budget entry (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if org == "" || amount <= 0 {
				return fmt.Errorf("--org and a positive --amount required")
			}
			payload := map[string]interface{}{"org": org, "category": recCategory, "amount": amount}
			if duration != "" {
				payload["duration"] = duration
			}
			data, err := doPost("/api/budget/entries", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	recordCmd.Flags().StringVarP(&org, "org", "o", "", "Organization (required)")
	recordCmd.Flags().StringVarP(&recCategory, "category", "c", "general", "Spending category")
	recordCmd.Flags().Float64VarP(&amount, "amount", "m", 0, "Amount in dollars (required)")
	recordCmd.Flags().StringVarP(&duration, "duration", "d", "", "Duration text, e.g. '3 months'")
	_ = recordCmd.MarkFlagRequired("org")
	_ = recordCmd.MarkFlagRequired("amount")
	budgetCmd.AddCommand(recordCmd)

	rootCmd.AddCommand(budgetCmd)
}
