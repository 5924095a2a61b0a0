package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skbidisigma1/groupme-cli/api"
	"github.com/skbidisigma1/groupme-cli/page"
	"github.com/skbidisigma1/groupme-cli/pkg/worker"
)

func newReadCommand(a *app) *cobra.Command {
	var count int
	var beforeID string
	cmd := &cobra.Command{
		Use:   "read <group-id>",
		Short: "Read recent group messages, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher := page.NewFetcher(page.GroupMessages(a.client, args[0]),
				page.WithLogger(a.logger))
			msgs, err := withRetry(cmd.Context(), func() ([]api.Message, error) {
				if beforeID != "" {
					return a.client.GroupMessages(cmd.Context(), args[0], beforeID, count)
				}
				return fetcher.Latest(cmd.Context(), count)
			})
			if err != nil {
				return err
			}
			reverse(msgs)
			return a.printMessages(msgs)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 20, "number of messages")
	cmd.Flags().StringVar(&beforeID, "before", "", "read the page before this message id")
	return cmd
}

func newReadDMCommand(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "read-dm <user-id>",
		Short: "Read recent direct messages with a user, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher := page.NewFetcher(page.DirectMessages(a.client, args[0]),
				page.WithLogger(a.logger))
			msgs, err := withRetry(cmd.Context(), func() ([]api.Message, error) {
				return fetcher.Latest(cmd.Context(), count)
			})
			if err != nil {
				return err
			}
			reverse(msgs)
			return a.printMessages(msgs)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 20, "number of messages")
	return cmd
}

func newListDMsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List direct-message conversations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			chats, err := withRetry(cmd.Context(), func() ([]api.Chat, error) {
				return a.client.ListChats(cmd.Context())
			})
			if err != nil {
				return err
			}
			return a.printChats(chats)
		},
	}
}

func newSendCommand(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "send <group-id> <text>",
		Short: "Send a message to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				return printJSON(api.GroupMessagePayload(args[1], nil))
			}
			msg, err := a.client.SendGroupMessage(cmd.Context(), args[0], args[1], nil)
			if err != nil {
				return err
			}
			fmt.Println("Sent message", msg.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the payload without sending")
	return cmd
}

func newDMCommand(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "dm <user-id> <text>",
		Short: "Send a direct message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				return printJSON(api.DirectMessagePayload(args[0], args[1]))
			}
			msg, err := a.client.SendDirectMessage(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Println("Sent message", msg.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the payload without sending")
	return cmd
}

func newLikeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "like <conversation-id> <message-id>",
		Short: "Like a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client.LikeMessage(cmd.Context(), args[0], args[1])
		},
	}
}

func newUnlikeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unlike <conversation-id> <message-id>",
		Short: "Remove a like from a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client.UnlikeMessage(cmd.Context(), args[0], args[1])
		},
	}
}

func newBulkLikeCommand(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "bulk-like <group-id>",
		Short: "Like the most recent messages in a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return bulkReact(cmd, a, args[0], count, a.client.LikeMessage, "Liked")
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of messages to like")
	return cmd
}

func newBulkUnlikeCommand(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "bulk-unlike <group-id>",
		Short: "Remove likes from the most recent messages in a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return bulkReact(cmd, a, args[0], count, a.client.UnlikeMessage, "Unliked")
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of messages to unlike")
	return cmd
}

// bulkReactWorkers bounds concurrent reaction requests.
const bulkReactWorkers = 4

// bulkReact fetches the latest messages and applies a per-message action
// through a worker pool; individual failures are reported but do not
// stop the batch
func bulkReact(cmd *cobra.Command, a *app, groupID string, count int,
	action func(ctx context.Context, conversationID, messageID string) error, verb string) error {

	ctx := cmd.Context()
	fetcher := page.NewFetcher(page.GroupMessages(a.client, groupID), page.WithLogger(a.logger))
	msgs, err := withRetry(ctx, func() ([]api.Message, error) {
		return fetcher.Latest(ctx, count)
	})
	if err != nil {
		return err
	}

	pool := worker.NewPool(bulkReactWorkers, func(ctx context.Context, m api.Message) error {
		return action(ctx, groupID, m.ID)
	})
	results := pool.Run(ctx, msgs)

	for _, r := range results {
		if r.Err != nil {
			a.logger.Warn("reaction failed", "message_id", r.Task.ID, "error", r.Err)
			continue
		}
		fmt.Printf("%s %s (%s)\n", verb, r.Task.ID, oneLine(r.Task.Text))
	}
	if failed := pool.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d reactions failed", failed, len(msgs))
	}
	return nil
}

func newSearchCommand(a *app) *cobra.Command {
	var maxPages int
	var native bool
	cmd := &cobra.Command{
		Use:   "search <group-id> <query>",
		Short: "Search group history for messages containing text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			msgs, err := withRetry(ctx, func() ([]api.Message, error) {
				if native {
					return a.client.SearchGroupMessages(ctx, args[0], args[1])
				}
				fetcher := page.NewFetcher(page.GroupMessages(a.client, args[0]),
					page.WithLogger(a.logger))
				return fetcher.Search(ctx, args[1], maxPages)
			})
			if err != nil {
				return err
			}
			return a.printMessages(msgs)
		},
	}
	cmd.Flags().IntVar(&maxPages, "max-pages", page.DefaultSearchPages,
		"history pages to scan")
	cmd.Flags().BoolVar(&native, "native", false,
		"use the server-side search endpoint instead of scanning history")
	return cmd
}

func newSearchDMCommand(a *app) *cobra.Command {
	var maxPages int
	cmd := &cobra.Command{
		Use:   "search-dm <user-id> <query>",
		Short: "Search a direct-message history for messages containing text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fetcher := page.NewFetcher(page.DirectMessages(a.client, args[0]),
				page.WithLogger(a.logger))
			msgs, err := withRetry(ctx, func() ([]api.Message, error) {
				return fetcher.Search(ctx, args[1], maxPages)
			})
			if err != nil {
				return err
			}
			return a.printMessages(msgs)
		},
	}
	cmd.Flags().IntVar(&maxPages, "max-pages", page.DefaultSearchPages,
		"history pages to scan")
	return cmd
}

func newPinCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pin <group-id> <message-id>",
		Short: "Pin a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client.PinMessage(cmd.Context(), args[0], args[1])
		},
	}
}

func newUnpinCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unpin <group-id> <message-id>",
		Short: "Unpin a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client.UnpinMessage(cmd.Context(), args[0], args[1])
		},
	}
}

func newAnnounceCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "announce <group-id> <text>",
		Short: "Post an announcement to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client.CreateAnnouncement(cmd.Context(), args[0], args[1])
		},
	}
}

// reverse flips newest-first API order into reading order
func reverse(msgs []api.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
