// Package message implements the opcode-specific request and response
// bodies of the native protocol (CQL binary protocol v4 §4), operating
// on the already-framed Body bytes internal/frame hands back. Nothing
// here touches a socket or a stream id; that is internal/conn's job.
package message

import (
	"github.com/onoffswitch/gocassa/internal/primitive"
)

// CQLVersionKey and CompressionKey are the STARTUP option names the
// protocol recognizes.
const (
	CQLVersionKey     = "CQL_VERSION"
	CompressionKey    = "COMPRESSION"
	NoCompactKey      = "NO_COMPACT"
	ThrottlingKey     = "THROTTLING"
	DriverNameKey     = "DRIVER_NAME"
	DriverVersionKey  = "DRIVER_VERSION"
	DefaultCQLVersion = "3.0.0"
)

// Startup is the first request a connection sends after the TCP
// handshake: a string map of options, CQL_VERSION mandatory, COMPRESSION
// present only when the connection negotiated a compression algorithm.
type Startup struct {
	Options map[string]string
}

// EncodeStartup renders a STARTUP body.
func EncodeStartup(s Startup) ([]byte, error) {
	w := primitive.NewWriter(32)
	if err := w.StringMap("startup.options", s.Options); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeStartup is provided for completeness and for the driver's own
// contract tests; a client never receives a STARTUP frame from a server.
func DecodeStartup(body []byte) (Startup, error) {
	r := primitive.NewReader(body)
	opts, err := r.StringMap("startup.options")
	if err != nil {
		return Startup{}, err
	}
	return Startup{Options: opts}, nil
}
