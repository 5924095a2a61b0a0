package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skbidisigma1/groupme-cli/api"
	"github.com/skbidisigma1/groupme-cli/pkg/timestamp"
)

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := withRetry(cmd.Context(), func() (*api.User, error) {
				return a.client.Me(cmd.Context())
			})
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(user)
			}
			fmt.Printf("Name:    %s\n", user.Name)
			fmt.Printf("ID:      %s\n", user.ID)
			if user.Email != "" {
				fmt.Printf("Email:   %s\n", user.Email)
			}
			if user.PhoneNumber != "" {
				fmt.Printf("Phone:   %s\n", user.PhoneNumber)
			}
			fmt.Printf("Created: %s\n", timestamp.Format(user.CreatedAt))
			return nil
		},
	}
}
