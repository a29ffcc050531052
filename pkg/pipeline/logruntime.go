package pipeline

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// LogRuntime is a GraphRuntime that performs no real media work: it logs
// every call it receives and hands back opaque placeholder handles. It is
// the default runtime wfdsourced runs with when no framework-specific
// GraphRuntime has been wired in by the embedder - standing in for the
// actual capture/encode backend this module deliberately does not own.
type LogRuntime struct {
	log     *slog.Logger
	counter atomic.Int64
}

// NewLogRuntime returns a LogRuntime that logs through log, or slog's
// default logger if log is nil.
func NewLogRuntime(log *slog.Logger) *LogRuntime {
	if log == nil {
		log = slog.Default()
	}
	return &LogRuntime{log: log}
}

type logElement struct {
	kind string
	id   int64
}

type logPad struct {
	name string
	id   int64
}

func (r *LogRuntime) nextID() int64 {
	return r.counter.Add(1)
}

// MakeElement logs the requested element kind and properties.
func (r *LogRuntime) MakeElement(kind string, props map[string]any) (Element, error) {
	el := &logElement{kind: kind, id: r.nextID()}
	r.log.Debug("pipeline: make element", "kind", kind, "id", el.id, "props", props)
	return el, nil
}

// Link logs the requested connection.
func (r *LogRuntime) Link(src, dst Element) error {
	r.log.Debug("pipeline: link", "src", describe(src), "dst", describe(dst))
	return nil
}

// SetState logs the requested state transition.
func (r *LogRuntime) SetState(el Element, state State) error {
	r.log.Debug("pipeline: set state", "element", describe(el), "state", state)
	return nil
}

// RequestPad logs and returns a placeholder pad.
func (r *LogRuntime) RequestPad(el Element, name string) (Pad, error) {
	pad := &logPad{name: name, id: r.nextID()}
	r.log.Debug("pipeline: request pad", "element", describe(el), "name", name, "id", pad.id)
	return pad, nil
}

// AddProbe logs and returns a placeholder probe handle. The supplied fn
// is never invoked, since LogRuntime carries no real buffer traffic.
func (r *LogRuntime) AddProbe(pad Pad, fn ProbeFunc) (Element, error) {
	probe := &logElement{kind: "probe", id: r.nextID()}
	r.log.Debug("pipeline: add probe", "pad", describe(pad), "probe", probe.id)
	return probe, nil
}

// RemoveProbe logs the removal.
func (r *LogRuntime) RemoveProbe(pad Pad, probe Element) error {
	r.log.Debug("pipeline: remove probe", "pad", describe(pad), "probe", describe(probe))
	return nil
}

func describe(v any) string {
	switch e := v.(type) {
	case *logElement:
		return fmt.Sprintf("%s#%d", e.kind, e.id)
	case *logPad:
		return fmt.Sprintf("pad:%s#%d", e.name, e.id)
	case nil:
		return "<graph>"
	default:
		return fmt.Sprintf("%v", v)
	}
}
