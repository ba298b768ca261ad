// Package build centralizes the driver's self-identification constants,
// the way internal/protocol centralizes the wire format's. A connection
// sends these as STARTUP options so the server's system tables can tell
// which driver and version a client is running.
package build

// Name and Version are sent as the STARTUP request's DRIVER_NAME and
// DRIVER_VERSION options (CQL binary protocol v4 §4.1.1.1). Version is
// bumped by hand; there is no VCS-derived stamping here, since the
// driver doesn't have a release pipeline to inject one.
const (
	Name    = "gocassa"
	Version = "0.1.0"
)
