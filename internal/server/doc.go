// Package server wires the Fiber application that exposes the mirrored
// conference data to LAN clients: /data/<name> serves payloads from the latest
// sync snapshot and /-/status reports sync diagnostics. It also owns the
// shared upstream http.Client used by the sync pipeline.
package server
