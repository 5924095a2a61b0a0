package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skbidisigma1/groupme-cli/api"
	"github.com/skbidisigma1/groupme-cli/page"
)

func testHistory() []api.Message {
	return []api.Message{
		{ID: "m2", Name: "alice", Text: "second", CreatedAt: 7200, FavoritedBy: []string{"u1", "u2"}},
		{ID: "m1", Name: "bob", Text: "first, with a comma", CreatedAt: 3600},
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, testHistory()))

	var decoded []api.Message
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "m2", decoded[0].ID)
	assert.Equal(t, []string{"u1", "u2"}, decoded[0].FavoritedBy)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testHistory()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "created_at", "name", "text", "likes"}, records[0])
	assert.Equal(t, []string{"m2", "1970-01-01T02:00:00Z", "alice", "second", "2"}, records[1])
	assert.Equal(t, "first, with a comma", records[2][3])
	assert.Equal(t, "0", records[2][4])
}

func TestWriteCSVMissingTimestamp(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []api.Message{{ID: "m1", Name: "alice"}}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "-", records[1][1])
}

// pagedSource serves a fixed history in cursor pages.
func pagedSource(history []api.Message) page.Source {
	return func(_ context.Context, beforeID string, limit int) ([]api.Message, error) {
		start := 0
		if beforeID != "" {
			for i, m := range history {
				if m.ID == beforeID {
					start = i + 1
					break
				}
			}
		}
		end := start + limit
		if end > len(history) {
			end = len(history)
		}
		return history[start:end], nil
	}
}

func TestStreamCSVWalksAllPages(t *testing.T) {
	history := make([]api.Message, 250)
	for i := range history {
		history[i] = api.Message{
			ID:        fmt.Sprintf("m%03d", i),
			Name:      "alice",
			Text:      "hello",
			CreatedAt: int64(1000 + i),
		}
	}
	f := page.NewFetcher(pagedSource(history))

	var buf bytes.Buffer
	require.NoError(t, StreamCSV(context.Background(), &buf, f))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 251) // header + every message
	assert.Equal(t, "m000", records[1][0])
	assert.Equal(t, "m249", records[250][0])
}

func TestStreamJSONProducesValidArray(t *testing.T) {
	f := page.NewFetcher(pagedSource(testHistory()))

	var buf bytes.Buffer
	require.NoError(t, StreamJSON(context.Background(), &buf, f))

	var decoded []api.Message
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "m2", decoded[0].ID)
	assert.Equal(t, "m1", decoded[1].ID)
}

func TestStreamJSONEmptyHistory(t *testing.T) {
	f := page.NewFetcher(pagedSource(nil))

	var buf bytes.Buffer
	require.NoError(t, StreamJSON(context.Background(), &buf, f))

	var decoded []api.Message
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Empty(t, decoded)
}

func TestStreamCSVPropagatesFetchError(t *testing.T) {
	f := page.NewFetcher(func(context.Context, string, int) ([]api.Message, error) {
		return nil, fmt.Errorf("boom")
	})

	var buf bytes.Buffer
	err := StreamCSV(context.Background(), &buf, f)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "boom"))
}
