package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/skbidisigma1/groupme-cli/export"
	"github.com/skbidisigma1/groupme-cli/page"
)

func newExportCommand(a *app) *cobra.Command {
	var format, output, userID string
	var rps float64
	cmd := &cobra.Command{
		Use:   "export [group-id]",
		Short: "Export a full message history to JSON or CSV",
		Long: "Walks the complete history of a group (or, with --dm, a direct-message\n" +
			"conversation) and streams it to a file or stdout. Large histories are\n" +
			"paced with a rate limit to stay polite to the API.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var src page.Source
			switch {
			case userID != "":
				src = page.DirectMessages(a.client, userID)
			case len(args) == 1:
				src = page.GroupMessages(a.client, args[0])
			default:
				return fmt.Errorf("a group id or --dm user id is required")
			}

			fetcher := page.NewFetcher(src,
				page.WithLogger(a.logger),
				page.WithLimiter(rate.NewLimiter(rate.Limit(rps), 1)))

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			switch format {
			case "json":
				err := export.StreamJSON(ctx, out, fetcher)
				if err != nil {
					return err
				}
			case "csv":
				err := export.StreamCSV(ctx, out, fetcher)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q: want json or csv", format)
			}

			if output != "" {
				a.logger.Info("export complete", "file", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&userID, "dm", "", "export the direct-message history with this user")
	cmd.Flags().Float64Var(&rps, "rate", 5, "history pages fetched per second")
	return cmd
}
