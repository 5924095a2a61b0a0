package stats

import (
	"sort"

	"github.com/skbidisigma1/groupme-cli/api"
	"github.com/skbidisigma1/groupme-cli/pkg/timestamp"
)

// DefaultTopN is how many entries leaderboards carry when the caller
// does not say otherwise.
const DefaultTopN = 10

// PosterCount is one leaderboard entry: a sender and how many messages
// they posted.
type PosterCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// LikedMessage is one most-liked entry. Text is carried so the result
// is readable without a second lookup.
type LikedMessage struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	Likes     int    `json:"likes"`
	CreatedAt int64  `json:"created_at"`
}

// HourCount is activity in one hour-of-day bucket (0-23, UTC).
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// Stats is the aggregate over one message history.
type Stats struct {
	TotalMessages int           `json:"total_messages"`
	TopPosters    []PosterCount `json:"top_posters"`
	MostLiked     []LikedMessage `json:"most_liked"`
	Hours         []HourCount   `json:"hours"`
}

// Accumulator folds messages into running aggregates. Not safe for
// concurrent use; the fetch loop is sequential anyway.
type Accumulator struct {
	total   int
	posters map[string]int
	liked   []LikedMessage
	hours   [timestamp.HoursPerDay]int
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{
		posters: make(map[string]int),
	}
}

// Add folds one message into the aggregates. System messages count
// toward the total and the histogram but not the poster leaderboard;
// messages without a timestamp stay out of the histogram but still
// count everywhere else.
func (a *Accumulator) Add(msg api.Message) {
	a.total++

	if !msg.System {
		a.posters[msg.Sender()]++
	}

	if likes := msg.LikeCount(); likes > 0 {
		a.liked = append(a.liked, LikedMessage{
			ID:        msg.ID,
			Name:      msg.Sender(),
			Text:      msg.Text,
			Likes:     likes,
			CreatedAt: msg.CreatedAt,
		})
	}

	if hour, ok := timestamp.HourBucket(msg.CreatedAt); ok {
		a.hours[hour]++
	}
}

// AddAll folds a batch of messages
func (a *Accumulator) AddAll(msgs []api.Message) {
	for _, msg := range msgs {
		a.Add(msg)
	}
}

// Result computes the final statistics, keeping the top n entries per
// leaderboard. n <= 0 means DefaultTopN.
func (a *Accumulator) Result(n int) Stats {
	if n <= 0 {
		n = DefaultTopN
	}
	return Stats{
		TotalMessages: a.total,
		TopPosters:    a.topPosters(n),
		MostLiked:     a.mostLiked(n),
		Hours:         a.hourHistogram(),
	}
}

// topPosters ranks senders by message count, ties broken by name so
// the ordering is stable
func (a *Accumulator) topPosters(n int) []PosterCount {
	ranked := make([]PosterCount, 0, len(a.posters))
	for name, count := range a.posters {
		ranked = append(ranked, PosterCount{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// mostLiked ranks messages by like count, ties broken by message id
func (a *Accumulator) mostLiked(n int) []LikedMessage {
	ranked := make([]LikedMessage, len(a.liked))
	copy(ranked, a.liked)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Likes != ranked[j].Likes {
			return ranked[i].Likes > ranked[j].Likes
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// hourHistogram reports only hours with activity, in hour order
func (a *Accumulator) hourHistogram() []HourCount {
	var hist []HourCount
	for hour, count := range a.hours {
		if count == 0 {
			continue
		}
		hist = append(hist, HourCount{Hour: hour, Count: count})
	}
	return hist
}

// Collect is the one-shot form: aggregate a fully-materialized history
func Collect(msgs []api.Message, n int) Stats {
	acc := NewAccumulator()
	acc.AddAll(msgs)
	return acc.Result(n)
}
