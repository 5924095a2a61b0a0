// Package export writes message history to portable formats. The JSON
// form carries the full message records; the CSV form flattens each
// message to the columns a spreadsheet reader wants.
//
// Both formats come in a materialized variant (a slice in memory) and a
// streaming variant fed directly from a pagination walk, so a full
// group history never has to fit in memory at once.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/skbidisigma1/groupme-cli/api"
	"github.com/skbidisigma1/groupme-cli/errors"
	"github.com/skbidisigma1/groupme-cli/page"
	"github.com/skbidisigma1/groupme-cli/pkg/timestamp"
)

// csvHeader is the flattened column set.
var csvHeader = []string{"id", "created_at", "name", "text", "likes"}

// WriteJSON writes the messages as a JSON array, indented for human
// consumption
func WriteJSON(w io.Writer, msgs []api.Message) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(msgs); err != nil {
		return errors.WrapInvalid(err, "export", "WriteJSON", "encode messages")
	}
	return nil
}

// WriteCSV writes the messages as CSV with a header row
func WriteCSV(w io.Writer, msgs []api.Message) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.WrapInvalid(err, "export", "WriteCSV", "write header")
	}
	for _, msg := range msgs {
		if err := cw.Write(csvRecord(msg)); err != nil {
			return errors.WrapInvalid(err, "export", "WriteCSV", "write record")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.WrapInvalid(err, "export", "WriteCSV", "flush")
	}
	return nil
}

// csvRecord flattens one message to the export columns
func csvRecord(msg api.Message) []string {
	return []string{
		msg.ID,
		timestamp.Format(msg.CreatedAt),
		msg.Sender(),
		msg.Text,
		strconv.Itoa(msg.LikeCount()),
	}
}

// StreamJSON walks the fetcher and writes a JSON array element by
// element, newest first, without materializing the history
func StreamJSON(ctx context.Context, w io.Writer, f *page.Fetcher) error {
	if _, err := io.WriteString(w, "[\n"); err != nil {
		return errors.WrapInvalid(err, "export", "StreamJSON", "write open bracket")
	}

	first := true
	err := f.Walk(ctx, func(msg api.Message) error {
		if !first {
			if _, err := io.WriteString(w, ",\n"); err != nil {
				return err
			}
		}
		first = false
		record, err := json.MarshalIndent(msg, "  ", "  ")
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, "  "); err != nil {
			return err
		}
		_, err = w.Write(record)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "export", "StreamJSON", "walk history")
	}

	if _, err := io.WriteString(w, "\n]\n"); err != nil {
		return errors.WrapInvalid(err, "export", "StreamJSON", "write close bracket")
	}
	return nil
}

// StreamCSV walks the fetcher and writes CSV records as pages arrive
func StreamCSV(ctx context.Context, w io.Writer, f *page.Fetcher) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.WrapInvalid(err, "export", "StreamCSV", "write header")
	}

	err := f.Walk(ctx, func(msg api.Message) error {
		return cw.Write(csvRecord(msg))
	})
	if err != nil {
		return errors.Wrap(err, "export", "StreamCSV", "walk history")
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.WrapInvalid(err, "export", "StreamCSV", "flush")
	}
	return nil
}
