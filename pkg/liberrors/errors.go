// Package liberrors holds the typed error set returned across the source
// session lifecycle: one struct per failure mode, each carrying the
// context a caller needs to log or react to it, in place of sentinel
// errors or bare fmt.Errorf strings.
package liberrors

import "fmt"

// ErrMalformedHeader is returned when an RTSP header or a wfd_* parameter
// line cannot be decoded at all.
type ErrMalformedHeader struct {
	Line string
}

// Error implements the error interface.
func (e ErrMalformedHeader) Error() string {
	return fmt.Sprintf("malformed header line: %q", e.Line)
}

// ErrNegotiationFailed is returned when the source and sink capability
// sets have no usable intersection.
type ErrNegotiationFailed struct {
	Reason string
}

// Error implements the error interface.
func (e ErrNegotiationFailed) Error() string {
	return fmt.Sprintf("negotiation failed: %s", e.Reason)
}

// ErrBuildFailed is returned when the media pipeline fails to build or
// link.
type ErrBuildFailed struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e ErrBuildFailed) Error() string {
	return fmt.Sprintf("pipeline build failed at %s: %v", e.Stage, e.Err)
}

// ErrTypeDetectionFailed is returned when a hot-swap source URI cannot be
// matched to any usable demuxer.
type ErrTypeDetectionFailed struct {
	URI string
}

// Error implements the error interface.
func (e ErrTypeDetectionFailed) Error() string {
	return fmt.Sprintf("could not detect a usable source type for %q", e.URI)
}

// ErrTransportFailure is returned when the RTSP transport connection
// fails irrecoverably.
type ErrTransportFailure struct {
	Err error
}

// Error implements the error interface.
func (e ErrTransportFailure) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

// ErrKeepaliveTimeout is returned when a session fails to see a
// GET_PARAMETER keepalive reply within the timeout window.
type ErrKeepaliveTimeout struct {
	SessionID string
}

// Error implements the error interface.
func (e ErrKeepaliveTimeout) Error() string {
	return fmt.Sprintf("session %s: keepalive timeout", e.SessionID)
}

// ErrSwapAborted is returned when an in-flight hot-swap is abandoned
// before it completes, e.g. because the session tore down.
type ErrSwapAborted struct {
	Reason string
}

// Error implements the error interface.
func (e ErrSwapAborted) Error() string {
	return fmt.Sprintf("swap aborted: %s", e.Reason)
}
