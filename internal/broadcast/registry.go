package broadcast

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry owns every per-instrument broadcast loop. A loop exists exactly
// while the instrument has subscribers: the first Attach starts it, the last
// Detach cancels it. Constructed at process start and torn down once with
// Shutdown; there is no package-level instance.
type Registry struct {
	source   ViewSource
	interval time.Duration
	logger   *zap.Logger
	baseCtx  context.Context

	mu     sync.Mutex
	loops  map[uint64]*loop
	closed bool
}

type loop struct {
	instrumentID uint64
	slug         string
	cancel       context.CancelFunc
	done         chan struct{}

	mu    sync.Mutex
	sinks []Sink
}

func NewRegistry(baseCtx context.Context, source ViewSource, interval time.Duration, logger *zap.Logger) *Registry {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Registry{
		source:   source,
		interval: interval,
		logger:   logger,
		baseCtx:  baseCtx,
		loops:    map[uint64]*loop{},
	}
}

// Attach subscribes a sink to an instrument, starting the broadcast loop if
// this is the instrument's first subscriber.
func (r *Registry) Attach(instrumentID uint64, slug string, sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		_ = sink.Close()
		return
	}
	lp, ok := r.loops[instrumentID]
	if ok {
		lp.addSink(sink)
		return
	}

	ctx, cancel := context.WithCancel(r.baseCtx)
	lp = &loop{
		instrumentID: instrumentID,
		slug:         slug,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	lp.addSink(sink)
	r.loops[instrumentID] = lp
	go r.run(ctx, lp)
	if r.logger != nil {
		r.logger.Info("broadcast loop started",
			zap.Uint64("instrument_id", instrumentID),
			zap.String("slug", slug),
		)
	}
}

// Detach unsubscribes a sink. When the last sink leaves, the loop is
// cancelled; it stops at its next tick boundary. Detaching a sink that is
// not attached is a no-op.
func (r *Registry) Detach(instrumentID uint64, sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lp, ok := r.loops[instrumentID]
	if !ok {
		return
	}
	if !lp.removeSink(sink) {
		return
	}
	_ = sink.Close()
	if lp.subscriberCount() == 0 {
		lp.cancel()
		delete(r.loops, instrumentID)
		if r.logger != nil {
			r.logger.Info("broadcast loop stopped", zap.Uint64("instrument_id", instrumentID))
		}
	}
}

// ActiveLoops reports how many instruments currently have a running loop.
func (r *Registry) ActiveLoops() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.loops)
}

// Subscribers reports the subscriber count for one instrument.
func (r *Registry) Subscribers(instrumentID uint64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	lp, ok := r.loops[instrumentID]
	if !ok {
		return 0
	}
	return lp.subscriberCount()
}

// Shutdown cancels every loop and closes every sink. The registry accepts
// no attachments afterwards.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	loops := make([]*loop, 0, len(r.loops))
	for _, lp := range r.loops {
		loops = append(loops, lp)
	}
	r.loops = map[uint64]*loop{}
	r.closed = true
	r.mu.Unlock()

	for _, lp := range loops {
		lp.cancel()
		for _, sink := range lp.snapshotSinks() {
			_ = sink.Close()
		}
		<-lp.done
	}
}

func (lp *loop) addSink(sink Sink) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	lp.sinks = append(lp.sinks, sink)
}

func (lp *loop) removeSink(sink Sink) bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	for i, s := range lp.sinks {
		if s == sink {
			lp.sinks = append(lp.sinks[:i], lp.sinks[i+1:]...)
			return true
		}
	}
	return false
}

func (lp *loop) subscriberCount() int {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return len(lp.sinks)
}

func (lp *loop) snapshotSinks() []Sink {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	out := make([]Sink, len(lp.sinks))
	copy(out, lp.sinks)
	return out
}
