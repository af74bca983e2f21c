package fanout

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arvelez/sentrycam/internal/model"
)

// DefaultQueueSize is the per-subscriber outbound queue capacity.
// A subscriber that falls this many messages behind starts losing
// broadcasts (best-effort delivery, no retry).
const DefaultQueueSize = 32

// subscriber pairs a transport with its bounded outbound queue. The
// writer goroutine is the only caller of the transport's SendMessage,
// so broadcast iteration never performs network I/O.
type subscriber struct {
	id        string
	transport Transport
	queue     chan []byte
	done      chan struct{}
	stopOnce  sync.Once
}

func (s *subscriber) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Registry owns the set of live subscribers. All map mutation happens
// under one mutex held only for the mutation itself, never across
// transport I/O.
type Registry struct {
	logger    *slog.Logger
	queueSize int

	mu   sync.Mutex
	subs map[string]*subscriber
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithQueueSize overrides the per-subscriber queue capacity.
func WithQueueSize(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.queueSize = n
		}
	}
}

// NewRegistry creates an empty subscriber registry.
func NewRegistry(logger *slog.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		logger:    logger,
		queueSize: DefaultQueueSize,
		subs:      make(map[string]*subscriber),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Connect registers a transport under a freshly minted identifier and
// starts its writer goroutine. Identifiers are never reused; a
// reconnecting client always gets a new one.
func (r *Registry) Connect(t Transport) string {
	sub := &subscriber{
		id:        uuid.NewString(),
		transport: t,
		queue:     make(chan []byte, r.queueSize),
		done:      make(chan struct{}),
	}

	r.mu.Lock()
	r.subs[sub.id] = sub
	count := len(r.subs)
	r.mu.Unlock()

	go r.writeLoop(sub)

	r.logger.Info("subscriber connected", "id", sub.id, "subscribers", count)
	return sub.id
}

// Disconnect removes a subscriber and closes its transport.
// Disconnecting an absent or already-removed identifier is a silent
// no-op; double-removal races with internal pruning are expected.
func (r *Registry) Disconnect(id string) {
	r.mu.Lock()
	sub, ok := r.subs[id]
	if ok {
		delete(r.subs, id)
	}
	count := len(r.subs)
	r.mu.Unlock()

	if !ok {
		return
	}

	sub.stop()
	if err := sub.transport.Close(); err != nil {
		r.logger.Warn("transport close failed", "id", id, "error", err)
	}

	r.logger.Info("subscriber disconnected", "id", id, "subscribers", count)
}

// Broadcast fans one domain event out to every current subscriber.
// Delivery is best-effort: the payload is marshaled once and enqueued
// without blocking; a full queue drops this message for that
// subscriber, and a transport failure (detected by the writer
// goroutine) prunes them. Errors never reach the caller.
func (r *Registry) Broadcast(payload any) {
	r.enqueueAll(model.Envelope{
		Type: model.FrameTypeEvent,
		Data: payload,
	})
}

// PingAll sends a liveness probe through the same fan-out path.
// Subscribers whose transport write fails are pruned, which is the
// only half-open connection detection the transport offers.
func (r *Registry) PingAll() {
	r.enqueueAll(model.Envelope{
		Type:      model.FrameTypePing,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (r *Registry) enqueueAll(env model.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		r.logger.Error("marshal outbound frame failed", "type", env.Type, "error", err)
		return
	}

	r.mu.Lock()
	targets := make([]*subscriber, 0, len(r.subs))
	for _, sub := range r.subs {
		targets = append(targets, sub)
	}
	r.mu.Unlock()

	for _, sub := range targets {
		select {
		case sub.queue <- data:
		case <-sub.done:
		default:
			r.logger.Warn("subscriber queue full, dropping frame",
				"id", sub.id,
				"type", env.Type,
			)
		}
	}
}

// writeLoop drains one subscriber's queue. A failed write prunes the
// subscriber; one bad peer never affects delivery to the others.
func (r *Registry) writeLoop(sub *subscriber) {
	for {
		select {
		case <-sub.done:
			return
		case data := <-sub.queue:
			if err := sub.transport.SendMessage(data); err != nil {
				r.logger.Warn("send failed, pruning subscriber",
					"id", sub.id,
					"error", err,
				)
				r.Disconnect(sub.id)
				return
			}
		}
	}
}

// CloseAll proactively closes every live transport and clears the
// registry, so no further delivery attempts occur. Safe to call
// repeatedly and with no subscribers remaining.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	targets := make([]*subscriber, 0, len(r.subs))
	for _, sub := range r.subs {
		targets = append(targets, sub)
	}
	r.subs = make(map[string]*subscriber)
	r.mu.Unlock()

	for _, sub := range targets {
		sub.stop()
		if err := sub.transport.Close(); err != nil {
			r.logger.Warn("transport close failed during shutdown",
				"id", sub.id,
				"error", err,
			)
		}
	}

	if len(targets) > 0 {
		r.logger.Info("all subscribers closed", "closed", len(targets))
	}
}

// Count returns the current live-subscriber count.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
