package auth

const (
	// AuthorizationHeader is where the REST-flavored gateway
	// delivers the credential.
	AuthorizationHeader = "Authorization"

	// TokenQueryParam is where the WebSocket-flavored gateway
	// delivers it; WebSocket handshakes cannot carry custom headers
	// from browsers.
	TokenQueryParam = "token"
)
