// Package state holds the shared snapshot updated by the polling loop and
// read by the listen TUI and the HTTP API.
package state
