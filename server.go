package wfdsource

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/go-wfd/wfdsource/pkg/addrpool"
	"github.com/go-wfd/wfdsource/pkg/capability"
	"github.com/go-wfd/wfdsource/pkg/pipeline"
	"github.com/go-wfd/wfdsource/pkg/rtsp"
)

// Server accepts sink connections and drives each one through the WFD
// handshake and streaming lifecycle.
type Server struct {
	Config  Config
	handler Handler
	log     *slog.Logger

	// Runtime is the GraphRuntime each session's pipeline is built
	// against; it must be set before Start is called.
	Runtime pipeline.GraphRuntime

	sourceCapability capability.Capability

	listener net.Listener
	pool     *addrpool.Pool

	ctx       context.Context
	ctxCancel context.CancelFunc
	wg        sync.WaitGroup

	mutex    sync.Mutex
	sessions map[string]*Session
}

// New allocates a Server. sourceCapability is the source's own
// advertised capability set, used as the source side of every negotiation.
func New(cfg Config, sourceCapability capability.Capability, handler Handler, log *slog.Logger) (*Server, error) {
	cfg = cfg.withDefaults()

	if log == nil {
		log = slog.Default()
	}

	pool, err := addrpool.New(cfg.RTPPortLow, cfg.RTPPortHigh)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		Config:           cfg,
		handler:          handler,
		log:              log,
		sourceCapability: sourceCapability,
		pool:             pool,
		ctx:              ctx,
		ctxCancel:        cancel,
		sessions:         make(map[string]*Session),
	}, nil
}

// Start binds the listen address and begins accepting connections in the
// background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.Config.ListenAddr)
	if err != nil {
		return err
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Close stops accepting connections and tears down every active session.
func (s *Server) Close() error {
	s.ctxCancel()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}

	s.mutex.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mutex.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}

	s.wg.Wait()

	return err
}

// Wait blocks until the accept loop has fully stopped.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		nconn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				s.log.Error("accept failed", "error", err)
				return
			}
		}

		s.wg.Add(1)
		go s.handleConn(nconn)
	}
}

func (s *Server) handleConn(nconn net.Conn) {
	defer s.wg.Done()
	defer nconn.Close()

	conn := rtsp.NewConn(nconn)
	sess := newSession(s, conn, nconn.RemoteAddr())
	sess.sourceCapability = s.sourceCapability

	s.addSession(sess)
	defer s.removeSession(sess)

	// Closing the session or the server cancels the session's context,
	// which closes the transport and unblocks the read loop.
	defer sess.ctxCancel()
	go func() {
		<-sess.ctx.Done()
		nconn.Close()
	}()

	// A session that has not completed M1-M4 within IdleSessionTimeout is
	// reaped by closing its transport.
	reap := time.AfterFunc(time.Duration(s.Config.IdleSessionTimeout)*time.Second, func() {
		nconn.Close()
	})
	err := sess.runHandshake()
	reap.Stop()
	if err != nil {
		s.log.Warn("handshake failed", "session", sess.ID, "error", err)
		if h, ok := s.handler.(HandlerOnSessionClosed); ok {
			h.OnSessionClosed(&OnSessionClosedCtx{Session: sess, Error: err})
		}
		return
	}

	err = sess.runStreamingLoop()

	sess.Close()

	if h, ok := s.handler.(HandlerOnSessionClosed); ok {
		h.OnSessionClosed(&OnSessionClosedCtx{Session: sess, Error: err})
	}
}

func (s *Server) addSession(sess *Session) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *Server) removeSession(sess *Session) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.sessions, sess.ID)
}
