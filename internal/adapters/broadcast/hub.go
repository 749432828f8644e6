package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/bakeboard/internal/domain/model"
	"github.com/okian/bakeboard/pkg/logger"
	"github.com/okian/bakeboard/pkg/metrics"
)

const defaultObserverBuffer = 16

// SnapshotSource rebuilds the full state bundle for delivery.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (model.Snapshot, error)
}

// Conn is the minimal observer connection contract. The HTTP adapter wraps
// a websocket connection; tests use an in-memory fake.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type observer struct {
	id   string
	conn Conn
	send chan model.Snapshot
}

// Hub fans a fresh snapshot out to every subscribed observer after each
// mutation signal, and once to each observer on subscribe.
type Hub struct {
	mu        sync.Mutex
	observers map[string]*observer

	source   SnapshotSource
	notifier *Notifier
	buffer   int
	log      logger.Logger
}

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithObserverBuffer bounds each observer's pending-snapshot queue.
func WithObserverBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithLogger sets a custom logger for the hub.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHub creates a hub reading snapshots from source and wakeups from
// notifier.
func NewHub(source SnapshotSource, notifier *Notifier, opts ...Option) *Hub {
	h := &Hub{
		observers: make(map[string]*observer),
		source:    source,
		notifier:  notifier,
		buffer:    defaultObserverBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.Named("broadcast")
	}
	return h
}

// Run consumes mutation signals until ctx is canceled. Delivery is
// fire-and-forget: a failed rebuild is logged and the hub keeps serving.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil
		case <-h.notifier.Wake():
			snap, err := h.source.Snapshot(ctx)
			if err != nil {
				h.log.Error(ctx, "snapshot rebuild failed", logger.Error(err))
				continue
			}
			h.fanout(ctx, snap)
			metrics.RecordBroadcast()
		}
	}
}

// Subscribe registers an observer and immediately delivers the current
// snapshot. Returns the observer id for Unsubscribe.
func (h *Hub) Subscribe(ctx context.Context, conn Conn) (string, error) {
	snap, err := h.source.Snapshot(ctx)
	if err != nil {
		return "", err
	}

	o := &observer{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan model.Snapshot, h.buffer),
	}
	o.send <- snap

	h.mu.Lock()
	h.observers[o.id] = o
	count := len(h.observers)
	h.mu.Unlock()
	metrics.SetObserversConnected(count)

	go h.writeLoop(ctx, o)

	h.log.Debug(ctx, "observer subscribed", logger.String("id", o.id), logger.Int("observers", count))
	return o.id, nil
}

// Unsubscribe removes an observer and closes its connection.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	o, ok := h.observers[id]
	if ok {
		delete(h.observers, id)
	}
	count := len(h.observers)
	h.mu.Unlock()

	if !ok {
		return
	}
	close(o.send)
	_ = o.conn.Close()
	metrics.SetObserversConnected(count)
}

// Count returns the number of subscribed observers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

// fanout queues the snapshot to every observer. An observer whose queue is
// full is dropped rather than blocking the loop. Sends happen under the
// lock (they never block) so a concurrent Unsubscribe cannot close a
// channel mid-send.
func (h *Hub) fanout(ctx context.Context, snap model.Snapshot) {
	h.mu.Lock()
	var dropped []*observer
	for _, o := range h.observers {
		select {
		case o.send <- snap:
		default:
			dropped = append(dropped, o)
		}
	}
	for _, o := range dropped {
		delete(h.observers, o.id)
	}
	count := len(h.observers)
	h.mu.Unlock()

	for _, o := range dropped {
		h.log.Warn(ctx, "dropping slow observer", logger.String("id", o.id))
		metrics.RecordObserverDropped()
		close(o.send)
		_ = o.conn.Close()
	}
	if len(dropped) > 0 {
		metrics.SetObserversConnected(count)
	}
}

// writeLoop drains one observer's queue. A write failure drops the
// observer; a single broken connection never affects the others.
func (h *Hub) writeLoop(ctx context.Context, o *observer) {
	for snap := range o.send {
		if err := o.conn.WriteJSON(snap); err != nil {
			h.log.Debug(ctx, "observer write failed", logger.String("id", o.id), logger.Error(err))
			metrics.RecordObserverDropped()
			h.Unsubscribe(o.id)
			return
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	observers := h.observers
	h.observers = make(map[string]*observer)
	h.mu.Unlock()

	for _, o := range observers {
		close(o.send)
		_ = o.conn.Close()
	}
	metrics.SetObserversConnected(0)
}
