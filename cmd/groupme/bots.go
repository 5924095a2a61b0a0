package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skbidisigma1/groupme-cli/api"
)

func newBotsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bots",
		Short: "List and manage bots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bots, err := withRetry(cmd.Context(), func() ([]api.Bot, error) {
				return a.client.ListBots(cmd.Context())
			})
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(bots)
			}
			rows := make([][]string, 0, len(bots))
			for _, b := range bots {
				rows = append(rows, []string{b.BotID, b.Name, b.GroupID, b.CallbackURL})
			}
			table([]string{"BOT ID", "NAME", "GROUP", "CALLBACK"}, rows)
			return nil
		},
	}
	cmd.AddCommand(newBotsCreateCommand(a), newBotsPostCommand(a), newBotsDestroyCommand(a))
	return cmd
}

func newBotsCreateCommand(a *app) *cobra.Command {
	var avatarURL, callbackURL string
	cmd := &cobra.Command{
		Use:   "create <group-id> <name>",
		Short: "Create a bot in a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bot, err := a.client.CreateBot(cmd.Context(), api.Bot{
				GroupID:     args[0],
				Name:        args[1],
				AvatarURL:   avatarURL,
				CallbackURL: callbackURL,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created bot %s (%s)\n", bot.Name, bot.BotID)
			return nil
		},
	}
	cmd.Flags().StringVar(&avatarURL, "avatar-url", "", "bot avatar image URL")
	cmd.Flags().StringVar(&callbackURL, "callback-url", "", "webhook for incoming messages")
	return cmd
}

func newBotsPostCommand(a *app) *cobra.Command {
	var pictureURL string
	cmd := &cobra.Command{
		Use:   "post <bot-id> <text>",
		Short: "Post a message as a bot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client.PostBotMessage(cmd.Context(), args[0], args[1], pictureURL)
		},
	}
	cmd.Flags().StringVar(&pictureURL, "picture-url", "", "image to attach")
	return cmd
}

func newBotsDestroyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "destroy <bot-id>",
		Short: "Delete a bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DestroyBot(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Destroyed bot", args[0])
			return nil
		},
	}
}
