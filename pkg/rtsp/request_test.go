package rtsp

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestMarshalOptionsStar(t *testing.T) {
	req := Request{
		Method: Options,
		URL:    "*",
		Header: Header{
			"CSeq":    HeaderValue{"1"},
			"Require": HeaderValue{"org.wfa.wfd1.0"},
		},
	}

	require.Equal(t,
		"OPTIONS * RTSP/1.0\r\nCSeq: 1\r\nRequire: org.wfa.wfd1.0\r\n\r\n",
		req.String())
}

func TestRequestUnmarshal(t *testing.T) {
	byts := []byte("GET_PARAMETER rtsp://192.0.2.1/wfd1.0 RTSP/1.0\r\n" +
		"CSeq: 3\r\n" +
		"Content-Type: text/parameters\r\n" +
		"Content-Length: 11\r\n" +
		"\r\n" +
		"wfd_video\r\n")

	var req Request
	err := req.Unmarshal(bufio.NewReader(bytes.NewReader(byts)))
	require.NoError(t, err)

	require.Equal(t, GetParameter, req.Method)
	require.Equal(t, "rtsp://192.0.2.1/wfd1.0", req.URL)
	require.Equal(t, "3", req.Header.Get("CSeq"))
	require.Equal(t, []byte("wfd_video\r\n"), req.Body)
}

func TestRequestRoundTrip(t *testing.T) {
	req := Request{
		Method: SetParameter,
		URL:    "rtsp://192.0.2.1/wfd1.0",
		Header: Header{
			"CSeq":         HeaderValue{"4"},
			"Content-Type": HeaderValue{"text/parameters"},
		},
		Body: []byte("wfd_trigger_method: SETUP\r\n"),
	}

	var parsed Request
	err := parsed.Unmarshal(bufio.NewReader(bytes.NewReader(req.Marshal())))
	require.NoError(t, err)

	require.Equal(t, req.Method, parsed.Method)
	require.Equal(t, req.URL, parsed.URL)
	require.Equal(t, req.Body, parsed.Body)
	require.Equal(t, "4", parsed.Header.Get("CSeq"))
}

func TestRequestUnmarshalMalformed(t *testing.T) {
	byts := []byte("NOTAMETHODWITHOUTSPACEOREVERYTHINGELSEHEREISGARBAGEANDNEVERENDS")
	var req Request
	err := req.Unmarshal(bufio.NewReader(bytes.NewReader(byts)))
	require.Error(t, err)
}
