// Package rtpstats aggregates outgoing RTP send statistics and incoming
// RTCP receiver reports into one snapshot a session can log or expose.
// It inverts pkg/rtcpreceiver's role: that package builds receiver
// reports from a stream of received RTP packets, this one samples a
// stream of sent RTP packets and ingests receiver reports coming back
// from the sink.
package rtpstats

import (
	"sync"
	"time"

	"github.com/pion/rtcp"
)

// Sampler is the subset of rtpmp2t.Payloader the aggregator samples on
// each tick.
type Sampler interface {
	SequenceNumber() uint16
	BytesSent() uint64
	PacketsSent() uint64
}

// Snapshot is the aggregator's current view of the outgoing RTP stream,
// per spec §3's RtpStats model.
type Snapshot struct {
	SequenceNumber uint16
	BytesSent      uint64
	PacketsSent    uint64
	SampledAt      time.Time

	LastReceiverReport   *rtcp.ReceiverReport
	LastReceiverReportAt time.Time
}

// Aggregator samples a Sampler every period and separately records the
// most recent RTCP receiver report ingested from the sink.
type Aggregator struct {
	sampler Sampler
	period  time.Duration
	timeNow func() time.Time

	mutex    sync.RWMutex
	snapshot Snapshot

	terminate chan struct{}
	done      chan struct{}
}

// New allocates an Aggregator and starts its sampling ticker.
func New(sampler Sampler, period time.Duration, timeNow func() time.Time) *Aggregator {
	if timeNow == nil {
		timeNow = time.Now
	}

	a := &Aggregator{
		sampler:   sampler,
		period:    period,
		timeNow:   timeNow,
		terminate: make(chan struct{}),
		done:      make(chan struct{}),
	}

	go a.run()

	return a
}

// Close stops the sampling ticker.
func (a *Aggregator) Close() {
	close(a.terminate)
	<-a.done
}

func (a *Aggregator) run() {
	defer close(a.done)

	t := time.NewTicker(a.period)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			a.sample()

		case <-a.terminate:
			return
		}
	}
}

func (a *Aggregator) sample() {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.snapshot.SequenceNumber = a.sampler.SequenceNumber()
	a.snapshot.BytesSent = a.sampler.BytesSent()
	a.snapshot.PacketsSent = a.sampler.PacketsSent()
	a.snapshot.SampledAt = a.timeNow()
}

// IngestReceiverReport records the most recent RTCP receiver report the
// sink sent back.
func (a *Aggregator) IngestReceiverReport(rr *rtcp.ReceiverReport, receivedAt time.Time) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.snapshot.LastReceiverReport = rr
	a.snapshot.LastReceiverReportAt = receivedAt
}

// Snapshot returns a copy of the current stats.
func (a *Aggregator) Snapshot() Snapshot {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.snapshot
}
