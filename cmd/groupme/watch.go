package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skbidisigma1/groupme-cli/api"
	"github.com/skbidisigma1/groupme-cli/pkg/timestamp"
	"github.com/skbidisigma1/groupme-cli/push"
)

func newWatchCommand(a *app) *cobra.Command {
	var groupIDs []string
	var reconnect bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream events live: messages, likes, membership changes",
		Long: "Subscribes to the push channel for the authenticated user (and any\n" +
			"groups given with --group) and prints events as they arrive. Runs\n" +
			"until interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			me, err := withRetry(ctx, func() (*api.User, error) {
				return a.client.Me(ctx)
			})
			if err != nil {
				return err
			}

			channels := []string{"/user/" + me.ID}
			for _, id := range groupIDs {
				channels = append(channels, "/group/"+id)
			}

			for {
				err := a.watchOnce(ctx, channels)
				if ctx.Err() != nil {
					return nil
				}
				if err == nil || !reconnect {
					return err
				}
				a.logger.Warn("stream ended, reconnecting", "error", err)
				select {
				case <-time.After(2 * time.Second):
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
	cmd.Flags().StringSliceVar(&groupIDs, "group", nil, "also watch this group channel (repeatable)")
	cmd.Flags().BoolVar(&reconnect, "reconnect", true, "reconnect when the stream drops")
	return cmd
}

// watchOnce runs one session until it ends, printing every event
func (a *app) watchOnce(ctx context.Context, channels []string) error {
	session, err := push.NewSession(push.SessionConfig{
		URL:      a.cfg.PushURL,
		Token:    a.client.Token(),
		Channels: channels,
	}, push.WithLogger(a.logger))
	if err != nil {
		return err
	}

	stream, err := session.Open(ctx)
	if err != nil {
		return err
	}
	defer stream.Close()

	a.logger.Info("watching", "channels", channels)
	for ev := range stream.Events() {
		a.printEvent(ev)
	}
	return stream.Err()
}

func (a *app) printEvent(ev push.Event) {
	if a.jsonOut {
		_ = printJSON(ev)
		return
	}

	switch ev.Kind() {
	case push.KindMessage:
		var msg api.Message
		if err := ev.DecodeSubject(&msg); err != nil {
			fmt.Printf("%s  %s\n", timestamp.Format(ev.Received), ev.Alert)
			return
		}
		fmt.Printf("%s  %-20s %s\n",
			timestamp.Format(msg.CreatedAt), msg.Sender()+":", oneLine(msg.Text))
	case push.KindLike:
		fmt.Printf("%s  ♥ %s\n", timestamp.Format(ev.Received), ev.Alert)
	case push.KindMembership:
		fmt.Printf("%s  ~ %s\n", timestamp.Format(ev.Received), ev.Alert)
	case push.KindPing:
		// keepalive, not worth a line
	default:
		if ev.Alert != "" {
			fmt.Printf("%s  %s\n", timestamp.Format(ev.Received), ev.Alert)
		}
	}
}
