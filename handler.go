package wfdsource

import "github.com/go-wfd/wfdsource/pkg/capability"

// Handler is the interface implemented by all server handlers. A
// concrete handler implements any subset of the optional interfaces
// below; Server type-asserts against them as each event occurs.
type Handler interface{}

// OnOptionsRequestDoneCtx is the context of OnOptionsRequestDone.
type OnOptionsRequestDoneCtx struct {
	Session *Session
}

// HandlerOnOptionsRequestDone can be implemented by a Handler.
type HandlerOnOptionsRequestDone interface {
	// called after the M1/M2 OPTIONS exchange completes.
	OnOptionsRequestDone(*OnOptionsRequestDoneCtx)
}

// OnGetParameterRequestDoneCtx is the context of OnGetParameterRequestDone.
type OnGetParameterRequestDoneCtx struct {
	Session    *Session
	Negotiated capability.NegotiatedConfig
}

// HandlerOnGetParameterRequestDone can be implemented by a Handler.
type HandlerOnGetParameterRequestDone interface {
	// called after the M3/M4 capability negotiation completes.
	OnGetParameterRequestDone(*OnGetParameterRequestDoneCtx)
}

// OnPlayingDoneCtx is the context of OnPlayingDone.
type OnPlayingDoneCtx struct {
	Session *Session
}

// HandlerOnPlayingDone can be implemented by a Handler.
type HandlerOnPlayingDone interface {
	// called once the session's pipeline has entered the Playing state.
	OnPlayingDone(*OnPlayingDoneCtx)
}

// OnKeepaliveFailCtx is the context of OnKeepaliveFail.
type OnKeepaliveFailCtx struct {
	Session *Session
	Error   error
}

// HandlerOnKeepaliveFail can be implemented by a Handler.
type HandlerOnKeepaliveFail interface {
	// called when a session's M16 keepalive fails to get a timely reply.
	OnKeepaliveFail(*OnKeepaliveFailCtx)
}

// OnDirectStreamEndCtx is the context of OnDirectStreamEnd.
type OnDirectStreamEndCtx struct {
	Session *Session
	Error   error
}

// HandlerOnDirectStreamEnd can be implemented by a Handler.
type HandlerOnDirectStreamEnd interface {
	// called when a hot-swap-to-live episode completes, handing the
	// sink's stream back to the live capture source (spec §4.7, §9).
	// Not fired for ordinary session teardown - see HandlerOnSessionClosed.
	OnDirectStreamEnd(*OnDirectStreamEndCtx)
}

// OnSessionClosedCtx is the context of OnSessionClosed.
type OnSessionClosedCtx struct {
	Session *Session
	Error   error
}

// HandlerOnSessionClosed can be implemented by a Handler.
type HandlerOnSessionClosed interface {
	// called once for every session when its transport connection ends,
	// whether cleanly (TEARDOWN) or not, including a handshake failure.
	OnSessionClosed(*OnSessionClosedCtx)
}
