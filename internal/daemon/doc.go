// Package daemon coordinates the long-running roadmapd process.
//
// It wires configuration, the snapshot store, and the HTTP server into a
// single lifecycle with flock-based locking to prevent multiple instances
// from sharing one data directory. Request handling lives in the server
// package; the daemon focuses on startup, shutdown, and status reporting.
package daemon
