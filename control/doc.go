// Package control
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime configuration, metrics telemetry, and debug introspection for
// the ipcwait core.
//
// Provides:
//   - Environment-driven configuration with defaults (envconfig)
//   - Prometheus collectors for wait, firing, and delivery telemetry
//   - Named debug probes for state export
//
// Components take these by option and work without them; nothing in the
// core requires control to be wired.
package control
