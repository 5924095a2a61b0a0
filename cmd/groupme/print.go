package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/skbidisigma1/groupme-cli/api"
	"github.com/skbidisigma1/groupme-cli/pkg/timestamp"
)

// printJSON writes v to stdout as indented JSON
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table writes aligned rows to stdout
func table(header []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

func (a *app) printGroups(groups []api.Group) error {
	if a.jsonOut {
		return printJSON(groups)
	}
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			g.ID, g.Name, fmt.Sprintf("%d", len(g.Members)), timestamp.Format(g.UpdatedAt),
		})
	}
	table([]string{"ID", "NAME", "MEMBERS", "UPDATED"}, rows)
	return nil
}

func (a *app) printMessages(msgs []api.Message) error {
	if a.jsonOut {
		return printJSON(msgs)
	}
	for _, m := range msgs {
		likes := ""
		if n := m.LikeCount(); n > 0 {
			likes = fmt.Sprintf(" [+%d]", n)
		}
		fmt.Printf("%s  %-20s %s%s\n",
			timestamp.Format(m.CreatedAt), m.Sender()+":", oneLine(m.Text), likes)
	}
	return nil
}

func (a *app) printChats(chats []api.Chat) error {
	if a.jsonOut {
		return printJSON(chats)
	}
	rows := make([][]string, 0, len(chats))
	for _, c := range chats {
		preview := ""
		if c.LastMessage != nil {
			preview = oneLine(c.LastMessage.Text)
		}
		rows = append(rows, []string{
			c.OtherUser.ID, c.OtherUser.Name, timestamp.Format(c.UpdatedAt), preview,
		})
	}
	table([]string{"USER ID", "NAME", "UPDATED", "LAST MESSAGE"}, rows)
	return nil
}

// oneLine collapses newlines so table rows stay rows
func oneLine(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r", ""), "\n", " ")
}
