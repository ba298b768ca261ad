package message

import (
	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// Options is the OPTIONS request: an empty body asking the server to
// list its supported options in a SUPPORTED response.
type Options struct{}

// EncodeOptions always returns an empty body.
func EncodeOptions(Options) []byte { return nil }

// Ready is the READY response: an empty body confirming STARTUP
// succeeded and no authentication is required.
type Ready struct{}

// DecodeReady validates that a READY body is empty, as the protocol
// requires, rather than silently ignoring trailing bytes.
func DecodeReady(body []byte) (Ready, error) {
	if len(body) != 0 {
		return Ready{}, &xerrors.ProtocolViolationError{Reason: "READY body is not empty"}
	}
	return Ready{}, nil
}

// Supported is the SUPPORTED response: a string multimap of option name
// to the list of values the server accepts for it (CQL_VERSION,
// COMPRESSION, and server-specific extensions).
type Supported struct {
	Options map[string][]string
}

// DecodeSupported parses a SUPPORTED body.
func DecodeSupported(body []byte) (Supported, error) {
	r := primitive.NewReader(body)
	opts, err := r.StringMultimap("supported.options")
	if err != nil {
		return Supported{}, err
	}
	return Supported{Options: opts}, nil
}
