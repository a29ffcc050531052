package wfdsource

import "github.com/go-wfd/wfdsource/pkg/liberrors"

// Error aliases re-exporting the pkg/liberrors taxonomy at the package
// root, so callers importing only the root package don't also need to
// import pkg/liberrors to use errors.As/errors.Is against them.
type (
	ErrMalformedHeader     = liberrors.ErrMalformedHeader
	ErrNegotiationFailed   = liberrors.ErrNegotiationFailed
	ErrBuildFailed         = liberrors.ErrBuildFailed
	ErrTypeDetectionFailed = liberrors.ErrTypeDetectionFailed
	ErrTransportFailure    = liberrors.ErrTransportFailure
	ErrKeepaliveTimeout    = liberrors.ErrKeepaliveTimeout
	ErrSwapAborted         = liberrors.ErrSwapAborted
)
