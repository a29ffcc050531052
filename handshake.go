package wfdsource

import (
	"strconv"

	"github.com/go-wfd/wfdsource/pkg/capability"
	"github.com/go-wfd/wfdsource/pkg/liberrors"
	"github.com/go-wfd/wfdsource/pkg/rtsp"
	"github.com/go-wfd/wfdsource/pkg/wfdparam"
)

// runHandshake drives the source-initiated M1-M4 capability negotiation
// over s.conn, advancing s.state at each step. It returns once the
// session reaches StateReady or an unrecoverable error occurs.
func (s *Session) runHandshake() error {
	if err := s.sendM1(); err != nil {
		return err
	}

	for s.State() != StateReady {
		msg, err := s.conn.ReadAny()
		if err != nil {
			return liberrors.ErrTransportFailure{Err: err}
		}

		switch m := msg.(type) {
		case *rtsp.Response:
			if err := s.handleResponse(m); err != nil {
				return err
			}
		case *rtsp.Request:
			if err := s.handleRequest(m); err != nil {
				return err
			}
		}
	}

	return nil
}

// sendM1 sends the OPTIONS request that opens the handshake (spec §4.3,
// Scenario 1).
func (s *Session) sendM1() error {
	cseq := s.nextCSeq()

	s.lock.Lock()
	s.pending[cseq] = pendingRequest{messageID: "M1"}
	s.lock.Unlock()

	req := &rtsp.Request{
		Method: rtsp.Options,
		URL:    "*",
		Header: rtsp.Header{
			"CSeq":    rtsp.HeaderValue{strconv.Itoa(cseq)},
			"Require": rtsp.HeaderValue{WFDRequireToken},
		},
	}

	if err := s.conn.WriteRequest(req); err != nil {
		return liberrors.ErrTransportFailure{Err: err}
	}

	return s.setState(StateM1Sent)
}

// sendM3Probe sends the GET_PARAMETER capability probe once the sink's
// M2 OPTIONS has been answered (spec §4.3, Scenario 3).
func (s *Session) sendM3Probe() error {
	cseq := s.nextCSeq()

	s.lock.Lock()
	s.pending[cseq] = pendingRequest{messageID: "M3"}
	s.lock.Unlock()

	body := wfdparam.EmitNames(
		wfdparam.FieldAudioCodecs,
		wfdparam.FieldVideoFormats,
		wfdparam.FieldClientRTPPorts,
		wfdparam.FieldDisplayEDID,
		wfdparam.FieldContentProtection,
	)

	req := &rtsp.Request{
		Method: rtsp.GetParameter,
		URL:    "rtsp://localhost/wfd1.0",
		Header: rtsp.Header{
			"CSeq":         rtsp.HeaderValue{strconv.Itoa(cseq)},
			"Content-Type": rtsp.HeaderValue{"text/parameters"},
		},
		Body: body,
	}

	if err := s.conn.WriteRequest(req); err != nil {
		return liberrors.ErrTransportFailure{Err: err}
	}

	return s.setState(StateM3Sent)
}

// sendM4 sends the negotiated configuration as a SET_PARAMETER once
// negotiation has produced a NegotiatedConfig (spec §4.3, Scenario 4).
func (s *Session) sendM4(body []byte) error {
	cseq := s.nextCSeq()

	s.lock.Lock()
	s.pending[cseq] = pendingRequest{messageID: "M4"}
	s.lock.Unlock()

	req := &rtsp.Request{
		Method: rtsp.SetParameter,
		URL:    "rtsp://localhost/wfd1.0",
		Header: rtsp.Header{
			"CSeq":         rtsp.HeaderValue{strconv.Itoa(cseq)},
			"Content-Type": rtsp.HeaderValue{"text/parameters"},
		},
		Body: body,
	}

	if err := s.conn.WriteRequest(req); err != nil {
		return liberrors.ErrTransportFailure{Err: err}
	}

	return s.setState(StateM4Sent)
}

// handleResponse dispatches a response to whichever pending request it
// answers, keyed by CSeq.
func (s *Session) handleResponse(res *rtsp.Response) error {
	cseq, err := strconv.Atoi(res.Header.Get("CSeq"))
	if err != nil {
		return liberrors.ErrMalformedHeader{Line: res.Header.Get("CSeq")}
	}

	s.lock.Lock()
	pr, ok := s.pending[cseq]
	delete(s.pending, cseq)
	s.lock.Unlock()

	if !ok {
		return nil
	}

	switch pr.messageID {
	case "M1":
		return s.onM1Reply(res)
	case "M3":
		return s.onM3Reply(res)
	case "M4":
		return s.onM4Reply(res)
	case "M16":
		s.onKeepaliveReply(cseq)
	}

	return nil
}

func (s *Session) onM1Reply(res *rtsp.Response) error {
	s.lock.Lock()
	s.doneM1 = true
	s.lock.Unlock()
	return nil
}

// handleRequest handles a sink-initiated request the sink sent us,
// i.e. its own M2 OPTIONS message - the only Request a sink sends during
// the negotiation phase itself.
func (s *Session) handleRequest(req *rtsp.Request) error {
	if req.Method != rtsp.Options {
		return nil
	}

	res := &rtsp.Response{
		StatusCode: rtsp.StatusOK,
		Header: rtsp.Header{
			"CSeq":   rtsp.HeaderValue{req.Header.Get("CSeq")},
			"Public": rtsp.HeaderValue{"OPTIONS, GET_PARAMETER, SET_PARAMETER"},
		},
	}

	if err := s.conn.WriteResponse(res); err != nil {
		return liberrors.ErrTransportFailure{Err: err}
	}

	if err := s.setState(StateM2Received); err != nil {
		return err
	}

	if h, ok := s.server.handler.(HandlerOnOptionsRequestDone); ok {
		h.OnOptionsRequestDone(&OnOptionsRequestDoneCtx{Session: s})
	}

	return s.sendM3Probe()
}

func (s *Session) onM3Reply(res *rtsp.Response) error {
	sinkMsg, err := wfdparam.Parse(res.Body)
	if err != nil {
		return err
	}

	sinkCap := capability.Capability{
		AudioCodecs: sinkMsg.AudioCodecs,
	}
	if sinkMsg.VideoFormats != nil {
		sinkCap.VideoBitmaps = map[wfdparam.ResolutionFamily]uint32{
			wfdparam.FamilyCEA:  sinkMsg.VideoFormats.CEAResolutions,
			wfdparam.FamilyVESA: sinkMsg.VideoFormats.VESAResolutions,
			wfdparam.FamilyHH:   sinkMsg.VideoFormats.HandheldResolutions,
		}
	}

	s.lock.Lock()
	s.sinkCapability = sinkCap
	s.sinkRTPPorts = sinkMsg.ClientRTPPorts
	s.doneM3 = true
	s.lock.Unlock()

	if err := s.setState(StateM3Received); err != nil {
		return err
	}

	negotiated, err := capability.Intersect(s.sourceCapability, sinkCap)
	if err != nil {
		return err
	}

	s.lock.Lock()
	s.negotiated = negotiated
	s.lock.Unlock()

	msg := negotiatedToMessage(negotiated)

	return s.sendM4(wfdparam.EmitFull(msg))
}

func (s *Session) onM4Reply(res *rtsp.Response) error {
	s.lock.Lock()
	s.doneM4 = true
	s.lock.Unlock()

	if err := s.setState(StateM4Received); err != nil {
		return err
	}
	if err := s.setState(StateReady); err != nil {
		return err
	}

	if h, ok := s.server.handler.(HandlerOnGetParameterRequestDone); ok {
		h.OnGetParameterRequestDone(&OnGetParameterRequestDoneCtx{
			Session:    s,
			Negotiated: s.negotiated,
		})
	}

	return nil
}

// negotiatedToMessage renders a NegotiatedConfig as the wfd_* body M4
// sends the sink (spec §4.3, Scenario 4).
func negotiatedToMessage(cfg capability.NegotiatedConfig) *wfdparam.Message {
	videoFormats := &wfdparam.VideoFormats{
		NativeFamily: cfg.VideoFamily,
		Profile:      cfg.H264Profile,
		Level:        cfg.H264Level,
	}
	bit := uint32(1) << cfg.VideoResolutionIndex
	switch cfg.VideoFamily {
	case wfdparam.FamilyCEA:
		videoFormats.CEAResolutions = bit
	case wfdparam.FamilyVESA:
		videoFormats.VESAResolutions = bit
	case wfdparam.FamilyHH:
		videoFormats.HandheldResolutions = bit
	}

	return &wfdparam.Message{
		AudioCodecs: []wfdparam.AudioCodec{
			{Format: cfg.AudioFormat, Modes: audioModesFor(cfg), Latency: 0},
		},
		VideoFormats: videoFormats,
		PresentationURL: &wfdparam.PresentationURL{
			URL0: "rtsp://localhost/wfd1.0/streamid=0",
		},
	}
}

func audioModesFor(cfg capability.NegotiatedConfig) uint32 {
	if cfg.AudioFormat == wfdparam.AudioLPCM {
		if cfg.AudioFreqHz == 48000 {
			return 0x2
		}
		return 0x1
	}
	return 0x1
}
