package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag   string
	tokenFlag string
	rootCmd   = &cobra.Command{
		Use:   "conciergectl",
		Short: "CLI client for the concierge REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Concierge service base URL")
	rootCmd.PersistentFlags().StringVarP(&tokenFlag, "token", "t", "", "Bearer credential")

	// chat subcommand
	var newThread bool
	var org string
	chatCmd := &cobra.Command{
		Use:   "chat MESSAGE",
		Short: "Send a chat message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"message": args[0]}
			if newThread {
				payload["newThread"] = true
			}
			if org != "" {
				payload["org"] = org
			}
			data, err := doPost("/api/chat", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	chatCmd.Flags().BoolVar(&newThread, "new-thread", false, "Start a fresh conversation thread")
	chatCmd.Flags().StringVar(&org, "org", "", "Organization for budget intents")
	rootCmd.AddCommand(chatCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
