package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skbidisigma1/groupme-cli/api"
)

func newUploadImageCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload-image <file>",
		Short: "Upload an image and print its service URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := a.client.UploadImageFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(url)
			return nil
		},
	}
}

func newSendImageCommand(a *app) *cobra.Command {
	var caption string
	cmd := &cobra.Command{
		Use:   "send-image <group-id> <file>",
		Short: "Upload an image and send it to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			url, err := a.client.UploadImageFile(ctx, args[1])
			if err != nil {
				return err
			}
			msg, err := a.client.SendGroupMessage(ctx, args[0], caption, []api.Attachment{
				{Type: "image", URL: url},
			})
			if err != nil {
				return err
			}
			fmt.Println("Sent message", msg.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&caption, "caption", "", "text to send with the image")
	return cmd
}
