package rtpstats

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/pion/rtcp"
	"github.com/stretchr/testify/require"
)

type fakeSampler struct {
	seq   atomic.Uint32
	bytes atomic.Uint64
	pkts  atomic.Uint64
}

func (f *fakeSampler) SequenceNumber() uint16 { return uint16(f.seq.Load()) }
func (f *fakeSampler) BytesSent() uint64      { return f.bytes.Load() }
func (f *fakeSampler) PacketsSent() uint64    { return f.pkts.Load() }

func TestAggregatorSamplesPeriodically(t *testing.T) {
	sampler := &fakeSampler{}
	sampler.seq.Store(10)
	sampler.bytes.Store(1000)
	sampler.pkts.Store(5)

	a := New(sampler, 10*time.Millisecond, nil)
	defer a.Close()

	require.Eventually(t, func() bool {
		return a.Snapshot().SequenceNumber == 10
	}, time.Second, 5*time.Millisecond)

	snap := a.Snapshot()
	require.Equal(t, uint64(1000), snap.BytesSent)
	require.Equal(t, uint64(5), snap.PacketsSent)
}

func TestAggregatorIngestsReceiverReport(t *testing.T) {
	sampler := &fakeSampler{}
	a := New(sampler, time.Hour, nil)
	defer a.Close()

	rr := &rtcp.ReceiverReport{SSRC: 7}
	now := time.Now()
	a.IngestReceiverReport(rr, now)

	snap := a.Snapshot()
	require.Equal(t, rr, snap.LastReceiverReport)
	require.Equal(t, now, snap.LastReceiverReportAt)
}
