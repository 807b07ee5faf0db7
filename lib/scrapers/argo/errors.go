package argo

import "fmt"

// ProtocolError reports a broken hop in the sso redirect chain: the
// response didn't carry the redirect or token the next hop needs.
// Fatal for the login attempt, transport retries have already run out
// below this layer.
type ProtocolError struct {
	Hop    int
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("sso hop %d: %s", e.Hop, e.Reason)
}

// TransportError wraps a connection-level failure that survived the
// transport's retry budget.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s", e.Cause.Error())
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// AuthError reports incomplete credentials or an authenticated call
// made before a successful Login.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return e.Reason
}
