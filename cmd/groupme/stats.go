package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/skbidisigma1/groupme-cli/api"
	"github.com/skbidisigma1/groupme-cli/page"
	"github.com/skbidisigma1/groupme-cli/pkg/timestamp"
	"github.com/skbidisigma1/groupme-cli/stats"
)

func newStatsCommand(a *app) *cobra.Command {
	var count, topN int
	var all bool
	var userID string
	var rps float64
	cmd := &cobra.Command{
		Use:   "stats [group-id]",
		Short: "Aggregate statistics over message history",
		Args:  cobra.MaximumNArgs(1),
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

			acc := stats.NewAccumulator()
			var err error
			if all {
				err = fetcher.Walk(ctx, func(m api.Message) error {
					acc.Add(m)
					return nil
				})
			} else {
				var msgs []api.Message
				msgs, err = fetcher.Latest(ctx, count)
				acc.AddAll(msgs)
			}
			if err != nil {
				return err
			}

			result := acc.Result(topN)
			if a.jsonOut {
				return printJSON(result)
			}
			printStats(result)
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1000, "messages to aggregate")
	cmd.Flags().BoolVar(&all, "all", false, "aggregate the entire history")
	cmd.Flags().IntVar(&topN, "top", stats.DefaultTopN, "leaderboard size")
	cmd.Flags().StringVar(&userID, "dm", "", "aggregate the direct-message history with this user")
	cmd.Flags().Float64Var(&rps, "rate", 5, "history pages fetched per second")
	return cmd
}

func printStats(s stats.Stats) {
	fmt.Printf("Messages analyzed: %d\n\n", s.TotalMessages)

	fmt.Println("Top posters:")
	for i, p := range s.TopPosters {
		fmt.Printf("  %2d. %-24s %d\n", i+1, p.Name, p.Count)
	}

	if len(s.MostLiked) > 0 {
		fmt.Println("\nMost liked:")
		for i, m := range s.MostLiked {
			fmt.Printf("  %2d. [+%d] %s: %s (%s)\n",
				i+1, m.Likes, m.Name, oneLine(m.Text), timestamp.Format(m.CreatedAt))
		}
	}

	if len(s.Hours) > 0 {
		fmt.Println("\nActivity by hour (UTC):")
		max := 0
		for _, h := range s.Hours {
			if h.Count > max {
				max = h.Count
			}
		}
		for _, h := range s.Hours {
			bar := strings.Repeat("#", barWidth(h.Count, max))
			fmt.Printf("  %02d:00  %5d  %s\n", h.Hour, h.Count, bar)
		}
	}
}

// barWidth scales a count into at most 40 columns
func barWidth(count, max int) int {
	if max == 0 {
		return 0
	}
	w := count * 40 / max
	if w == 0 && count > 0 {
		w = 1
	}
	return w
}
