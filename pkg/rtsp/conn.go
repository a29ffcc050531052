package rtsp

import (
	"bufio"
	"io"
)

const readBufferSize = 4096

// Conn is a bidirectional RTSP connection: either side may send a Request
// and either side may send a Response, so Read must peek at the first
// bytes of the next message to tell them apart before committing to a
// parser. WFD's negotiation dialect is the reason this exists at all -
// an ordinary RTSP client/server only ever reads one of the two.
type Conn struct {
	w  io.Writer
	br *bufio.Reader
}

// NewConn allocates a Conn around rw.
func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{
		w:  rw,
		br: bufio.NewReaderSize(rw, readBufferSize),
	}
}

// ReadAny reads either a Request or a Response, whichever comes next.
func (c *Conn) ReadAny() (any, error) {
	byts, err := c.br.Peek(2)
	if err != nil {
		return nil, err
	}

	if byts[0] == 'R' && byts[1] == 'T' {
		var res Response
		if err := res.Unmarshal(c.br); err != nil {
			return nil, err
		}
		return &res, nil
	}

	var req Request
	if err := req.Unmarshal(c.br); err != nil {
		return nil, err
	}
	return &req, nil
}

// WriteRequest writes a Request.
func (c *Conn) WriteRequest(req *Request) error {
	_, err := c.w.Write(req.Marshal())
	return err
}

// WriteResponse writes a Response.
func (c *Conn) WriteResponse(res *Response) error {
	_, err := c.w.Write(res.Marshal())
	return err
}
