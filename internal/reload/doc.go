// Package reload re-applies the configuration when its file changes.
//
// A Watcher observes the directory holding the config file, so editors that
// save by renaming a temporary file are picked up too. Bursts of events are
// coalesced; after the file settles it is loaded and validated, and only a
// valid config is handed to the apply function. A broken edit is logged and
// the running configuration stays in place.
package reload
