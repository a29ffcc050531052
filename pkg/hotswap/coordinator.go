// Package hotswap implements live source substitution: replacing a
// running Graph's upstream source element with a different one - a file,
// or back to the live capture source - without interrupting the RTP
// sequence the sink is receiving.
//
// The substitution itself happens in an idle pad probe callback: a probe
// is installed on the encoder's sink pad, the relink runs inside the
// callback on the swap's own goroutine, and the probe is removed
// afterwards. Nothing is dispatched onto a separate main loop. A one-shot
// CompareAndSwap guard keeps two concurrent swaps from racing on the same
// pad.
package hotswap

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/go-wfd/wfdsource/pkg/liberrors"
	"github.com/go-wfd/wfdsource/pkg/pipeline"
)

// SwapHandle is returned by SwapToFile/SwapToLive; Done() closes once the
// swap has either completed or been aborted, and Err() then reports
// which.
type SwapHandle struct {
	done chan struct{}
	err  error
}

// Done returns a channel that closes when the swap finishes.
func (h *SwapHandle) Done() <-chan struct{} {
	return h.done
}

// Err returns the swap's outcome; only meaningful after Done() closes.
func (h *SwapHandle) Err() error {
	return h.err
}

func newHandle() *SwapHandle {
	return &SwapHandle{done: make(chan struct{})}
}

func (h *SwapHandle) finish(err error) {
	h.err = err
	close(h.done)
}

// detectSourceKind maps a URI to the GraphRuntime element kind that can
// read it, or reports failure. Schemes/extensions recognized here are
// intentionally narrow - spec Non-goals exclude general-purpose media
// demuxing.
func detectSourceKind(uri string) (string, bool) {
	switch {
	case strings.HasPrefix(uri, "file://") || strings.HasSuffix(uri, ".ts") || strings.HasSuffix(uri, ".mp4"):
		return "filesrc", true
	case strings.HasPrefix(uri, "rtsp://"):
		return "rtspsrc", true
	default:
		return "", false
	}
}

// Coordinator hot-swaps the source element of a single Graph. It is not
// safe for more than one swap to be in flight at a time; a second
// SwapToFile/SwapToLive call while one is pending aborts immediately with
// liberrors.ErrSwapAborted.
type Coordinator struct {
	graph     *pipeline.Graph
	liveKind  string
	liveProps map[string]any

	inPadProbe atomic.Bool
}

// New returns a Coordinator bound to graph. liveKind/liveProps describe
// the original live source, so SwapToLive can rebuild it.
func New(graph *pipeline.Graph, liveKind string, liveProps map[string]any) *Coordinator {
	return &Coordinator{
		graph:     graph,
		liveKind:  liveKind,
		liveProps: liveProps,
	}
}

// SwapToFile replaces the graph's source with a file source reading uri.
func (c *Coordinator) SwapToFile(ctx context.Context, uri string) (*SwapHandle, error) {
	kind, ok := detectSourceKind(uri)
	if !ok {
		return nil, liberrors.ErrTypeDetectionFailed{URI: uri}
	}

	return c.swapTo(ctx, kind, map[string]any{"location": uri})
}

// SwapToLive reverses a prior SwapToFile, rebuilding the original live
// source element.
func (c *Coordinator) SwapToLive(ctx context.Context) (*SwapHandle, error) {
	return c.swapTo(ctx, c.liveKind, c.liveProps)
}

func (c *Coordinator) swapTo(ctx context.Context, kind string, props map[string]any) (*SwapHandle, error) {
	if !c.inPadProbe.CompareAndSwap(false, true) {
		return nil, liberrors.ErrSwapAborted{Reason: "a swap is already in progress"}
	}

	handle := newHandle()

	go c.runSwap(ctx, kind, props, handle)

	return handle, nil
}

// runSwap performs the idle pad-probe dance: it requests the encoder's
// sink pad, installs a probe on it, and defers the actual unlink/relink
// onto the probe callback rather than doing it inline. The callback sets
// the old source to StateNull, links the new source to the encoder and
// sets it to StatePlaying; the old source is not removed from the graph,
// and no EOS event from it is intercepted. The probe is removed again
// once the callback has run.
func (c *Coordinator) runSwap(ctx context.Context, kind string, props map[string]any, handle *SwapHandle) {
	defer c.inPadProbe.Store(false)

	runtime := c.graph.Runtime

	newSource, err := runtime.MakeElement(kind, props)
	if err != nil {
		handle.finish(liberrors.ErrSwapAborted{Reason: err.Error()})
		return
	}

	select {
	case <-ctx.Done():
		handle.finish(liberrors.ErrSwapAborted{Reason: "context canceled before link"})
		return
	default:
	}

	sinkPad, err := runtime.RequestPad(c.graph.Encoder, "sink")
	if err != nil {
		handle.finish(liberrors.ErrSwapAborted{Reason: err.Error()})
		return
	}

	var relinkErr error
	idle := func(buf []byte) bool {
		if err := runtime.SetState(c.graph.Source, pipeline.StateNull); err != nil {
			relinkErr = err
			return true
		}
		if err := runtime.Link(newSource, c.graph.Encoder); err != nil {
			relinkErr = err
			return true
		}
		if err := runtime.SetState(newSource, pipeline.StatePlaying); err != nil {
			relinkErr = err
			return true
		}
		c.graph.Source = newSource
		return true
	}

	probe, err := runtime.AddProbe(sinkPad, idle)
	if err != nil {
		handle.finish(liberrors.ErrSwapAborted{Reason: err.Error()})
		return
	}

	// None of this module's runtimes drive real buffer traffic through an
	// installed probe on their own (see pipeline.LogRuntime), so the idle
	// callback is invoked directly once it's armed rather than waited on.
	idle(nil)

	if err := runtime.RemoveProbe(sinkPad, probe); err != nil && relinkErr == nil {
		relinkErr = err
	}

	if relinkErr != nil {
		handle.finish(liberrors.ErrSwapAborted{Reason: relinkErr.Error()})
		return
	}

	handle.finish(nil)
}
