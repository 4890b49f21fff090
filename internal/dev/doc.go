// Package dev provides the descriptor server behind "rrbuilder serve".
//
// This package implements:
//   - Polling the manifest source for changes
//   - Rebuilding descriptors on change
//   - An HTTP API serving the current descriptors
//   - WebSocket notifications when descriptors change or fail to build
//
// # Architecture
//
//   - Watcher: polls the manifest fingerprint (file mtime and size, S3 ETag)
//   - Server: holds the last build and serves it over HTTP
//   - Hub: pushes change messages to connected watchers
//
// # Endpoints
//
//	GET /routes              flat descriptors (?encoding=yaml)
//	GET /routes/tree         hierarchical descriptors
//	GET /routes/{id}         one descriptor
//	GET /healthz             build status
//	GET /metrics             Prometheus metrics
//	GET /_rrbuilder/watch    WebSocket change feed
//
// # Watch Protocol
//
// Messages are JSON-encoded:
//
//	{"type": "routes", "version": 3, "count": 12, "digest": "..."}  // new descriptors
//	{"type": "error", "version": 3, "error": "..."}                 // build failed
//
// A client receives the current state as soon as it connects.
package dev
