// Package logging assembles the process logger: a console handler plus
// optional general and error-only log files, all rendered through one
// column-aligned Formatter.
//
// Every record becomes a block whose message starts at a fixed column; the
// first line ends with the caller's file:line at a second fixed column and
// continuation lines of multi-line messages are indented to the message
// column. Console output is coloured when it goes to a terminal.
//
// Loggers live in a Registry under dotted names and keep their identity
// across reconfiguration. Setup is the entry point: it replaces the named
// logger's handlers, disables propagation and, by default, installs the
// crash hooks from package hooks.
package logging
