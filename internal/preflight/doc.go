// Package preflight checks that a configuration can actually be honoured on
// this host: log directories are writable (or creatable) and existing log
// files accept writes.
//
// Setup reports the same problems as errors, but only when it runs. The CLI
// "config validate" command uses RunAll to surface them up front, one Result
// per log target.
package preflight
