package message

import "github.com/onoffswitch/gocassa/internal/primitive"

// Authenticate is the server's response to STARTUP when the configured
// IAuthenticator requires credentials before the connection may proceed.
type Authenticate struct {
	Authenticator string
}

// DecodeAuthenticate parses an AUTHENTICATE body.
func DecodeAuthenticate(body []byte) (Authenticate, error) {
	r := primitive.NewReader(body)
	name, err := r.String("authenticate.authenticator")
	if err != nil {
		return Authenticate{}, err
	}
	return Authenticate{Authenticator: name}, nil
}

// AuthResponse carries the client's answer to an authentication
// challenge, or the initial credentials after AUTHENTICATE. Token is
// opaque to the driver; its format is defined by the negotiated
// authenticator (e.g. PasswordAuthenticator's "\0user\0pass").
type AuthResponse struct {
	Token []byte
}

// EncodeAuthResponse renders an AUTH_RESPONSE body.
func EncodeAuthResponse(a AuthResponse) ([]byte, error) {
	w := primitive.NewWriter(len(a.Token) + 4)
	if err := w.BytesField("auth_response.token", a.Token, a.Token == nil); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// AuthChallenge is an intermediate step in a multi-round SASL exchange.
type AuthChallenge struct {
	Token []byte
}

// DecodeAuthChallenge parses an AUTH_CHALLENGE body.
func DecodeAuthChallenge(body []byte) (AuthChallenge, error) {
	r := primitive.NewReader(body)
	token, _, err := r.Bytes("auth_challenge.token")
	if err != nil {
		return AuthChallenge{}, err
	}
	return AuthChallenge{Token: token}, nil
}

// AuthSuccess concludes a successful authentication exchange, optionally
// carrying a final token from the server-side SASL mechanism.
type AuthSuccess struct {
	Token []byte
}

// DecodeAuthSuccess parses an AUTH_SUCCESS body.
func DecodeAuthSuccess(body []byte) (AuthSuccess, error) {
	r := primitive.NewReader(body)
	token, _, err := r.Bytes("auth_success.token")
	if err != nil {
		return AuthSuccess{}, err
	}
	return AuthSuccess{Token: token}, nil
}
