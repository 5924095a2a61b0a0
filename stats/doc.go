// Package stats computes aggregate statistics over message history:
// who posts the most, which messages collected the most likes, and how
// activity distributes across hours of the day.
//
// The Accumulator is streaming-friendly: feed it one page at a time
// (e.g. from a page.Fetcher walk) and read the result when the history
// is exhausted. Results are deterministic: ties break on name or
// message id so repeated runs over the same history agree.
package stats
