// Package hooks routes uncaught failures into a logger.
//
// Go has no process-wide "last resort" handler, so the three failure
// channels are explicit: RecoverMain is deferred at the top of main,
// workers are launched with Go (or defer RecoverWorker), and a running
// eventloop.Loop has its exception handler wrapped. Each goroutine channel
// is a chain of links; installing hooks appends a link that logs the failure
// and passes it on, so the original terminal behaviour always runs last.
//
// Installation is recorded on a State and happens at most once per State.
// Process returns the State shared by the whole process.
package hooks
