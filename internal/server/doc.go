// Package server provides the optional status server started with
// --metrics-addr.
//
// Routes:
//
//   - GET /metrics: Prometheus exposition
//   - GET /healthz: liveness with version and uptime
//   - GET /progress: JSON snapshot of the current or last run ([RunState])
//   - GET /version: build information
//
// The CLI feeds it through [Server.RunStarted], [Server.UpdateProgress] and
// [Server.RunFinished].
package server
