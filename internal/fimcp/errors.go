package fimcp

import "fmt"

// TransportError wraps a network failure or an unexpected HTTP status.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: transport: unexpected status %d", e.Op, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SessionInitializationError means the handshake did not yield a session.
type SessionInitializationError struct {
	Reason string
	Err    error
}

func (e *SessionInitializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session initialization: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("session initialization: %s", e.Reason)
}

func (e *SessionInitializationError) Unwrap() error { return e.Err }

// InvalidStateError means an operation was attempted out of sequence.
// No network call is made when this is returned.
type InvalidStateError struct {
	Op     string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: invalid state: %s", e.Op, e.Reason)
}

// AuthenticationError means the login endpoint rejected the credentials.
type AuthenticationError struct {
	Status int
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication rejected with status %d", e.Status)
}

// ToolDiscoveryError means the tool catalog could not be listed.
type ToolDiscoveryError struct {
	Err error
}

func (e *ToolDiscoveryError) Error() string {
	return fmt.Sprintf("tool discovery: %v", e.Err)
}

func (e *ToolDiscoveryError) Unwrap() error { return e.Err }

// ToolCallError carries the remote error message of a tool call envelope.
type ToolCallError struct {
	Tool    string
	Message string
}

func (e *ToolCallError) Error() string {
	return fmt.Sprintf("tool %s: remote error: %s", e.Tool, e.Message)
}

// ParseError marks textual tool content that was not valid JSON. It is
// recovered locally (the raw result is returned) and only logged.
type ParseError struct {
	Tool string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tool %s: content parse: %v", e.Tool, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
