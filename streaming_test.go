package wfdsource

import (
	"bufio"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/go-wfd/wfdsource/pkg/capability"
	"github.com/go-wfd/wfdsource/pkg/pipeline"
	"github.com/go-wfd/wfdsource/pkg/rtsp"
	"github.com/go-wfd/wfdsource/pkg/wfdparam"
	"github.com/stretchr/testify/require"
)

func newStreamingTestSession(t *testing.T, handler Handler) (*Session, net.Conn) {
	t.Helper()

	server, err := New(Config{ListenAddr: "127.0.0.1:0", RTPPortLow: 41000, RTPPortHigh: 41020}, capability.Capability{}, handler, nil)
	require.NoError(t, err)
	server.Runtime = pipeline.NewLogRuntime(nil)

	serverSide, clientSide := net.Pipe()
	sess := newSession(server, rtsp.NewConn(serverSide), clientSide.RemoteAddr())
	return sess, clientSide
}

func drainOneResponse(t *testing.T, conn net.Conn) {
	t.Helper()
	go func() {
		var res rtsp.Response
		_ = res.Unmarshal(bufio.NewReader(conn))
	}()
}

func TestOnSetupAcquiresPortsAndEchoesTransport(t *testing.T) {
	sess, clientSide := newStreamingTestSession(t, nil)
	defer clientSide.Close()

	resCh := make(chan rtsp.Response, 1)
	go func() {
		var res rtsp.Response
		if err := res.Unmarshal(bufio.NewReader(clientSide)); err == nil {
			resCh <- res
		}
	}()

	// SETUP is only legal once the M1-M4 handshake has reached Ready.
	sess.lock.Lock()
	sess.state = StateReady
	sess.lock.Unlock()

	req := &rtsp.Request{
		Method: rtsp.Setup,
		URL:    "rtsp://localhost/wfd1.0/streamid=0",
		Header: rtsp.Header{"CSeq": rtsp.HeaderValue{"1"}},
	}
	require.NoError(t, sess.onSetup(req))

	sess.lock.Lock()
	rtpPort, rtcpPort := sess.rtpPort, sess.rtcpPort
	sess.lock.Unlock()

	require.NotZero(t, rtpPort)
	require.Equal(t, rtpPort+1, rtcpPort)

	select {
	case res := <-resCh:
		require.Equal(t, fmt.Sprintf("RTP/AVP/UDP;unicast;server_port=%d-%d", rtpPort, rtcpPort),
			res.Header.Get("Transport"))
	case <-time.After(time.Second):
		t.Fatal("SETUP response was not received")
	}
}

func TestCloseReleasesAcquiredPortPair(t *testing.T) {
	sess, clientSide := newStreamingTestSession(t, nil)
	defer clientSide.Close()
	drainOneResponse(t, clientSide)

	// SETUP is only legal once the M1-M4 handshake has reached Ready.
	sess.lock.Lock()
	sess.state = StateReady
	sess.lock.Unlock()

	req := &rtsp.Request{
		Method: rtsp.Setup,
		URL:    "rtsp://localhost/wfd1.0/streamid=0",
		Header: rtsp.Header{"CSeq": rtsp.HeaderValue{"1"}},
	}
	require.NoError(t, sess.onSetup(req))

	sess.lock.Lock()
	rtpPort := sess.rtpPort
	sess.lock.Unlock()

	sess.Close()

	reacquired, _, err := sess.server.pool.Acquire()
	require.NoError(t, err)
	require.Equal(t, rtpPort, reacquired)
}

func TestBuildPipelineWiresMuxerAndPayloader(t *testing.T) {
	sess, clientSide := newStreamingTestSession(t, nil)
	defer clientSide.Close()

	sess.lock.Lock()
	sess.negotiated = capability.NegotiatedConfig{
		AudioFormat:     wfdparam.AudioLPCM,
		VideoResolution: capability.Resolution{Width: 1280, Height: 720, FrameRate: 30},
	}
	sess.rtpPort = 41000
	sess.lock.Unlock()

	require.NoError(t, sess.buildPipeline())
	defer sess.Close()

	sess.lock.Lock()
	defer sess.lock.Unlock()
	require.NotNil(t, sess.graph)
	require.NotNil(t, sess.muxer)
	require.NotNil(t, sess.payloader)
	require.NotNil(t, sess.rtpConn)
	require.NotNil(t, sess.swapHandle)
}

type directStreamEndRecorder struct {
	done chan *OnDirectStreamEndCtx
}

func (r *directStreamEndRecorder) OnDirectStreamEnd(ctx *OnDirectStreamEndCtx) {
	r.done <- ctx
}

func TestSwapToLiveFiresOnDirectStreamEnd(t *testing.T) {
	rec := &directStreamEndRecorder{done: make(chan *OnDirectStreamEndCtx, 1)}
	sess, clientSide := newStreamingTestSession(t, rec)
	defer clientSide.Close()

	sess.lock.Lock()
	sess.negotiated = capability.NegotiatedConfig{
		AudioFormat:     wfdparam.AudioLPCM,
		VideoResolution: capability.Resolution{Width: 1280, Height: 720, FrameRate: 30},
	}
	sess.rtpPort = 41010
	sess.lock.Unlock()

	require.NoError(t, sess.buildPipeline())
	defer sess.Close()

	handle, err := sess.SwapToLive(sess.ctx)
	require.NoError(t, err)

	select {
	case <-handle.Done():
	case <-time.After(time.Second):
		t.Fatal("swap did not complete")
	}

	select {
	case ctx := <-rec.done:
		require.Same(t, sess, ctx.Session)
	case <-time.After(time.Second):
		t.Fatal("OnDirectStreamEnd was not fired")
	}
}
