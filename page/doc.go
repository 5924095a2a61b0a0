// Package page implements the cursor-based backward-pagination primitive
// used for latest-N retrieval, full-history export, and client-side text
// search over message collections.
//
// The provider returns messages newest-first. One pagination technique is
// reused everywhere: request up to 100 items with the current before-id
// cursor, advance the cursor to the id of the last (oldest) item of the
// page just fetched, and stop when a page comes back empty or short. The
// short-page rule (fewer items returned than requested) signals exhaustion
// without spending one extra round trip on an empty page.
//
// Each Fetcher call owns its own cursor and accumulator, so independent
// invocations may run concurrently with no shared mutable state. Fetch
// errors abort the current call and are surfaced to the caller; the
// fetcher itself never retries.
package page
