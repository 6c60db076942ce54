// Package testsupport holds helpers shared by tests: isolated environments,
// generated configs, and concurrency-safe output capture.
package testsupport
