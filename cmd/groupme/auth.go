package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/skbidisigma1/groupme-cli/api"
)

// newAuthCommand covers the OAuth flow. It overrides the root PreRun:
// these are the only commands that must work before a token exists.
func newAuthCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Obtain an API access token via OAuth",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			a.logger = setupLogger(a.logLevel, a.logFormat)
			slog.SetDefault(a.logger)
			return nil
		},
	}
	cmd.AddCommand(newAuthURLCommand(), newAuthExchangeCommand())
	return cmd
}

func newAuthURLCommand() *cobra.Command {
	var redirectURI, state string
	cmd := &cobra.Command{
		Use:   "url <client-id>",
		Short: "Print the browser authorization URL for an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			fmt.Println(api.AuthorizeURL("", args[0], redirectURI, state))
			return nil
		},
	}
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "callback URL registered with the application")
	cmd.Flags().StringVar(&state, "state", "", "opaque state echoed back on the callback")
	return cmd
}

func newAuthExchangeCommand() *cobra.Command {
	var clientSecret, redirectURI string
	cmd := &cobra.Command{
		Use:   "exchange <client-id> <code>",
		Short: "Exchange an authorization code for an access token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := api.ExchangeToken(cmd.Context(), http.DefaultClient,
				"", args[0], clientSecret, args[1], redirectURI)
			if err != nil {
				return err
			}
			fmt.Println(tok.AccessToken)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "application client secret")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "callback URL used in the authorize step")
	return cmd
}
