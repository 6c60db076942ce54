// Command customlogger inspects and exercises the logging setup.
//
// Subcommands:
//   - version prints the build version
//   - config init|validate|show manages the TOML configuration
//   - demo configures the logger from the configuration and emits sample
//     records, optionally provoking a crash to show the hook output
//   - logs prints the latest entries from the configured log files
package main
