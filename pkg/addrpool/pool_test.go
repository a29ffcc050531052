package addrpool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcquireReleaseCycle(t *testing.T) {
	p, err := New(19000, 19010)
	require.NoError(t, err)

	rtp, rtcp, err := p.Acquire()
	require.NoError(t, err)
	require.Equal(t, 19000, rtp)
	require.Equal(t, 19001, rtcp)

	rtp2, _, err := p.Acquire()
	require.NoError(t, err)
	require.Equal(t, 19002, rtp2)

	p.Release(rtp)
	rtp3, _, err := p.Acquire()
	require.NoError(t, err)
	require.Equal(t, 19000, rtp3)
}

func TestAcquireExhaustion(t *testing.T) {
	p, err := New(19000, 19002)
	require.NoError(t, err)

	_, _, err = p.Acquire()
	require.NoError(t, err)

	_, _, err = p.Acquire()
	require.Error(t, err)
}

func TestNewRejectsOddLow(t *testing.T) {
	_, err := New(19001, 19010)
	require.Error(t, err)
}
