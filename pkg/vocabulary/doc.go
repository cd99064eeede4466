// Package vocabulary holds the controlled vocabularies deposition tables are
// checked against.
//
// A vocabulary is built from a reference table: its header is the list of
// columns every deposition must carry, and the values found in each column
// are the accepted values for that field, compared case-insensitively after
// trimming. A Set is immutable; a Store swaps in a freshly loaded Set when
// the reference table changes, either on file events (Watcher) or on a cron
// schedule (Scheduler) for remote sources.
package vocabulary
