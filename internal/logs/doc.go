// Package logs reads back the files written by package logging.
//
// Entries span several physical lines when the message does, so reads are
// grouped into Entry values: a line that starts at column zero opens an
// entry and indented lines continue it. Reads take a shared lock on the file,
// the same lock writers hold per entry, so a reader never sees half an entry.
//
// Tail supports "last N entries" (negative offset) and follow mode, which
// polls from a byte offset until new entries arrive or the wait expires.
package logs
