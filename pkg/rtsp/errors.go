package rtsp

import "errors"

// ErrMalformedHeader is returned when the top-level RTSP framing (method
// line, status line, or a header's key/value split) cannot be parsed.
var ErrMalformedHeader = errors.New("rtsp: malformed header")
