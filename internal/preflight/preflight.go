package preflight

import (
	"strings"

	"customlogger/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that apply to cfg. Unset log targets are
// skipped; an error log that resolves to the general log file is checked
// once.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	logFile := strings.TrimSpace(cfg.Logging.LogFile)
	if logFile != "" {
		results = append(results, CheckLogTarget("Log file", logFile))
	}
	if errFile := strings.TrimSpace(cfg.Logging.ErrorLogFile); errFile != "" {
		if sameFile(logFile, errFile) {
			results = append(results, Result{Name: "Error log file", Passed: true, Detail: "same as log file"})
		} else {
			results = append(results, CheckLogTarget("Error log file", errFile))
		}
	}
	if len(results) == 0 {
		results = append(results, Result{Name: "Log files", Passed: true, Detail: "console only"})
	}
	return results
}
