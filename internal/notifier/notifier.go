// Package notifier delivers user-facing notifications off the request path.
// Enqueueing never blocks a handler: the queue is bounded and overflow is
// dropped with a warning rather than backpressuring the API.
package notifier

import (
	"context"
	"sync"

	"github.com/nmoreau/gatherly-backend/pkg/config"
	"github.com/nmoreau/gatherly-backend/pkg/enums"
	"github.com/nmoreau/gatherly-backend/pkg/logger"
)

// Notification is a single outbound message. Data carries template fields
// specific to the kind.
type Notification struct {
	Kind      enums.NotificationKind
	Recipient string
	Data      map[string]string
}

// Dispatcher fans notifications out to a Sender from a bounded queue.
type Dispatcher struct {
	sender Sender
	log    *logger.Logger
	queue  chan Notification
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDispatcher builds a dispatcher with the configured queue depth and
// worker count. Call Start before enqueueing and Close on shutdown.
func NewDispatcher(cfg config.NotifierConfig, sender Sender, log *logger.Logger) *Dispatcher {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Dispatcher{
		sender: sender,
		log:    log,
		queue:  make(chan Notification, queueSize),
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.run(ctx)
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for notification := range d.queue {
		if err := d.sender.Send(ctx, notification); err != nil {
			d.log.Error(d.log.WithFields(ctx, map[string]any{
				"kind":      string(notification.Kind),
				"recipient": notification.Recipient,
			}), "notification delivery failed", err)
		}
	}
}

// Notify enqueues a notification without blocking. Returns false when the
// queue is full or the dispatcher is closed, in which case the notification
// is dropped and logged.
func (d *Dispatcher) Notify(kind enums.NotificationKind, recipient string, data map[string]string) bool {
	notification := Notification{Kind: kind, Recipient: recipient, Data: data}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.warnDropped(kind, recipient, "dispatcher closed")
		return false
	}

	select {
	case d.queue <- notification:
		return true
	default:
		d.warnDropped(kind, recipient, "queue full")
		return false
	}
}

func (d *Dispatcher) warnDropped(kind enums.NotificationKind, recipient, reason string) {
	d.log.Warn(d.log.WithFields(context.Background(), map[string]any{
		"kind":      string(kind),
		"recipient": recipient,
		"reason":    reason,
	}), "notification dropped")
}

// Close stops accepting notifications, drains the queue, and waits for the
// workers to finish in-flight sends.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}
