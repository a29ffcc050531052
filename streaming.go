package wfdsource

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/mpeg4audio"

	"github.com/go-wfd/wfdsource/pkg/hotswap"
	"github.com/go-wfd/wfdsource/pkg/liberrors"
	"github.com/go-wfd/wfdsource/pkg/mpegts"
	"github.com/go-wfd/wfdsource/pkg/pipeline"
	"github.com/go-wfd/wfdsource/pkg/rtpmp2t"
	"github.com/go-wfd/wfdsource/pkg/rtpstats"
	"github.com/go-wfd/wfdsource/pkg/rtsp"
	"github.com/go-wfd/wfdsource/pkg/wfdparam"
)

// errNoPipeline is returned by SwapToFile/SwapToLive when called before
// the session's pipeline has been built.
var errNoPipeline = errors.New("session has no pipeline built yet")

// runStreamingLoop handles SETUP/PLAY/PAUSE/TEARDOWN requests and M16
// keepalive replies once a session has reached StateReady. It returns
// when the sink tears the session down or the transport fails.
func (s *Session) runStreamingLoop() error {
	for {
		msg, err := s.conn.ReadAny()
		if err != nil {
			return liberrors.ErrTransportFailure{Err: err}
		}

		switch m := msg.(type) {
		case *rtsp.Request:
			if err := s.handleStreamingRequest(m); err != nil {
				return err
			}
			if s.State() == StateTeardown {
				return nil
			}

		case *rtsp.Response:
			if err := s.handleResponse(m); err != nil {
				return err
			}
		}
	}
}

func (s *Session) handleStreamingRequest(req *rtsp.Request) error {
	switch req.Method {
	case rtsp.Setup:
		return s.onSetup(req)
	case rtsp.Play:
		return s.onPlay(req)
	case rtsp.Pause:
		return s.onPause(req)
	case rtsp.Teardown:
		return s.onTeardown(req)
	case rtsp.GetParameter:
		return s.replyOK(req)
	default:
		return s.replyOK(req)
	}
}

func (s *Session) replyOK(req *rtsp.Request) error {
	res := &rtsp.Response{
		StatusCode: rtsp.StatusOK,
		Header: rtsp.Header{
			"CSeq": rtsp.HeaderValue{req.Header.Get("CSeq")},
		},
	}
	if err := s.conn.WriteResponse(res); err != nil {
		return liberrors.ErrTransportFailure{Err: err}
	}
	return nil
}

// onSetup acquires the session's RTP/RTCP port pair from the server's
// addrpool.Pool and echoes them back in the Transport header, per spec
// §4.3's Setup step - the pair is released again in Session.Close.
func (s *Session) onSetup(req *rtsp.Request) error {
	rtpPort, rtcpPort, err := s.server.pool.Acquire()
	if err != nil {
		return liberrors.ErrBuildFailed{Stage: "acquire rtp ports", Err: err}
	}

	s.lock.Lock()
	s.rtpPort = rtpPort
	s.rtcpPort = rtcpPort
	s.lock.Unlock()

	if err := s.setState(StateSetup); err != nil {
		return err
	}

	res := &rtsp.Response{
		StatusCode: rtsp.StatusOK,
		Header: rtsp.Header{
			"CSeq":      rtsp.HeaderValue{req.Header.Get("CSeq")},
			"Transport": rtsp.HeaderValue{fmt.Sprintf("RTP/AVP/UDP;unicast;server_port=%d-%d", rtpPort, rtcpPort)},
		},
	}
	if err := s.conn.WriteResponse(res); err != nil {
		return liberrors.ErrTransportFailure{Err: err}
	}
	return nil
}

func (s *Session) onPlay(req *rtsp.Request) error {
	if s.State() == StateSetup {
		if err := s.buildPipeline(); err != nil {
			return err
		}
		if err := s.setState(StatePlaying); err != nil {
			return err
		}
		s.startKeepalive()
	} else if err := s.setState(StatePlaying); err != nil {
		return err
	}

	if h, ok := s.server.handler.(HandlerOnPlayingDone); ok {
		h.OnPlayingDone(&OnPlayingDoneCtx{Session: s})
	}

	return s.replyOK(req)
}

func (s *Session) onPause(req *rtsp.Request) error {
	if err := s.setState(StatePaused); err != nil {
		return err
	}
	return s.replyOK(req)
}

func (s *Session) onTeardown(req *rtsp.Request) error {
	if err := s.setState(StateTeardown); err != nil {
		return err
	}
	if err := s.replyOK(req); err != nil {
		return err
	}
	s.Close()
	return nil
}

// audioStreamType maps a negotiated wfdparam.AudioFormat to the MPEG-TS
// PMT stream type the muxer should advertise.
func audioStreamType(format wfdparam.AudioFormat) mpegts.AudioStreamType {
	switch format {
	case wfdparam.AudioAAC:
		return mpegts.AudioStreamTypeAAC
	case wfdparam.AudioAC3:
		return mpegts.AudioStreamTypeAC3
	default:
		return mpegts.AudioStreamTypeLPCM
	}
}

// buildPipeline constructs the session's capture/encode graph from its
// negotiated configuration, using the server's GraphRuntime, and wires
// its encoder outputs into a real MPEG-TS muxer and RTP/MP2T payloader
// that this session owns and drains onto a UDP socket addressed at the
// sink's negotiated RTP port (spec §4.3, §6 C4).
func (s *Session) buildPipeline() error {
	s.lock.Lock()
	negotiated := s.negotiated
	rtpPort := s.rtpPort
	sinkPorts := s.sinkRTPPorts
	s.lock.Unlock()

	var audioConfig *mpeg4audio.Config
	if negotiated.AudioFormat == wfdparam.AudioAAC {
		audioConfig = &mpeg4audio.Config{
			Type:         mpeg4audio.ObjectTypeAACLC,
			SampleRate:   negotiated.AudioFreqHz,
			ChannelCount: negotiated.AudioChannels,
		}
	}

	muxer := mpegts.NewMuxer(s.ctx, audioStreamType(negotiated.AudioFormat), audioConfig)

	payloader := &rtpmp2t.Payloader{PayloadMaxSize: s.server.Config.MTUSize}
	if err := payloader.Init(); err != nil {
		return liberrors.ErrBuildFailed{Stage: "rtp payloader init", Err: err}
	}

	rtpConn, err := net.ListenUDP("udp", &net.UDPAddr{Port: rtpPort})
	if err != nil {
		return liberrors.ErrBuildFailed{Stage: "open rtp socket", Err: err}
	}

	destPort := rtpPort
	if sinkPorts != nil && sinkPorts.Port0 != 0 {
		destPort = sinkPorts.Port0
	}
	dest := &net.UDPAddr{IP: s.remoteIP(), Port: destPort}

	send := func(tsPackets [][]byte) {
		if len(tsPackets) == 0 {
			return
		}
		if dump := s.server.Config.DumpTS; dump != nil {
			for _, pkt := range tsPackets {
				dump.Write(pkt)
			}
		}
		pkts, err := payloader.Payload(tsPackets)
		if err != nil {
			s.server.log.Warn("rtp payload failed", "session", s.ID, "error", err)
			return
		}
		for _, pkt := range pkts {
			raw, err := pkt.Marshal()
			if err != nil {
				s.server.log.Warn("rtp marshal failed", "session", s.ID, "error", err)
				continue
			}
			if _, err := rtpConn.WriteToUDP(raw, dest); err != nil {
				s.server.log.Warn("rtp send failed", "session", s.ID, "error", err)
			}
		}
	}

	start := time.Now()

	builder := pipeline.NewBuilder(s.server.Runtime)
	spec := pipeline.Spec{
		VideoSourceVariant:  s.server.Config.VideoSrcVariant,
		AudioDevice:         s.server.Config.AudioDevice,
		AudioLatencyTimeUs:  s.server.Config.AudioLatencyTimeUs,
		AudioBufferTimeUs:   s.server.Config.AudioBufferTimeUs,
		AudioDoTimestamp:    s.server.Config.AudioDoTimestamp,
		VideoEncoderName:    s.server.Config.VideoEncoderName,
		AudioEncoderAACName: s.server.Config.AudioEncoderAACName,
		AudioEncoderAC3Name: s.server.Config.AudioEncoderAC3Name,
		MTUSize:             s.server.Config.MTUSize,
		Negotiated:          negotiated,
		OnVideoAccessUnit: func(buf []byte) bool {
			tsPackets, err := muxer.WriteVideo(buf, time.Since(start))
			if err != nil {
				s.server.log.Warn("mux video failed", "session", s.ID, "error", err)
				return true
			}
			send(tsPackets)
			return true
		},
		OnAudioAccessUnit: func(buf []byte) bool {
			tsPackets, err := muxer.WriteAudio(buf, time.Since(start))
			if err != nil {
				s.server.log.Warn("mux audio failed", "session", s.ID, "error", err)
				return true
			}
			send(tsPackets)
			return true
		},
	}

	graph, err := builder.Build(spec)
	if err != nil {
		rtpConn.Close()
		return err
	}

	if patPackets, err := muxer.WritePAT(); err == nil {
		send(patPackets)
	}

	s.lock.Lock()
	s.graph = graph
	s.payloader = payloader
	s.muxer = muxer
	s.rtpConn = rtpConn
	s.swapHandle = hotswap.New(graph, string(spec.VideoSourceVariant), nil)
	s.lock.Unlock()

	s.statsLock.Lock()
	s.stats = rtpstats.New(payloader, StatsSampleInterval, nil)
	s.statsLock.Unlock()

	return nil
}

// SwapToFile hot-swaps the session's live capture source for a file
// source reading uri, without interrupting the RTP sequence the sink is
// receiving (spec §4.5).
func (s *Session) SwapToFile(ctx context.Context, uri string) (*hotswap.SwapHandle, error) {
	s.lock.Lock()
	swap := s.swapHandle
	s.lock.Unlock()

	if swap == nil {
		return nil, liberrors.ErrBuildFailed{Stage: "swap to file", Err: errNoPipeline}
	}

	return swap.SwapToFile(ctx, uri)
}

// SwapToLive reverses a prior SwapToFile, rebuilding the original live
// capture source. Once the swap completes, HandlerOnDirectStreamEnd fires
// - this is the only path that callback is defined to report (spec §4.7,
// §9).
func (s *Session) SwapToLive(ctx context.Context) (*hotswap.SwapHandle, error) {
	s.lock.Lock()
	swap := s.swapHandle
	s.lock.Unlock()

	if swap == nil {
		return nil, liberrors.ErrBuildFailed{Stage: "swap to live", Err: errNoPipeline}
	}

	handle, err := swap.SwapToLive(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		<-handle.Done()
		if h, ok := s.server.handler.(HandlerOnDirectStreamEnd); ok {
			h.OnDirectStreamEnd(&OnDirectStreamEndCtx{Session: s, Error: handle.Err()})
		}
	}()

	return handle, nil
}
