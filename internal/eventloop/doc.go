// Package eventloop provides a cooperative, single-goroutine task scheduler.
//
// A Loop runs submitted tasks in FIFO order on the goroutine that called Run
// and reports task errors and panics to a replaceable exception handler. At
// most one loop runs per process; Running exposes it so process-wide
// tooling (such as crash logging) can attach to the active loop.
package eventloop
