package mailer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Enqueue errors. ErrQueueClosed is returned once Start has begun shutting down.
var (
	ErrQueueFull   = errors.New("mailer: queue full, message not queued")
	ErrQueueClosed = errors.New("mailer: queue shut down, message not queued")
)

type queuedMessage struct {
	t   *transport
	msg Message
}

// Queue delivers messages in the background. A failed send is logged and
// dropped; nothing is retried.
type Queue struct {
	dispatcher *Dispatcher
	ch         chan queuedMessage

	// mu orders Enqueue against shutdown so nothing lands in ch after drain.
	mu     sync.Mutex
	closed bool

	// onDone observes every finished delivery. Used by tests.
	onDone func(msg Message, err error)
}

func NewQueue(d *Dispatcher, bufferSize int) *Queue {
	return &Queue{
		dispatcher: d,
		ch:         make(chan queuedMessage, bufferSize),
	}
}

// Start delivers queued messages until ctx is cancelled. On shutdown it
// drains any remaining messages before returning.
func (q *Queue) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			q.close()
			q.drain()
			return
		case item := <-q.ch:
			q.deliver(item)
		}
	}
}

// Enqueue captures the current transport and queues msg for delivery. It
// fails immediately when there is no transport or no room, and after
// shutdown.
func (q *Queue) Enqueue(msg Message) error {
	t := q.dispatcher.snapshot()
	if t == nil {
		return ErrTransportNotInitialized
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- queuedMessage{t: t, msg: msg}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// deliver is not tied to the Start context so messages accepted before
// shutdown are still sent by drain.
func (q *Queue) deliver(item queuedMessage) {
	err := q.dispatcher.sendWith(context.Background(), item.t, item.msg)
	if err != nil {
		slog.Error("mailer: queued send failed, message dropped", "to", item.msg.To, "subject", item.msg.Subject, "err", err)
	}
	if q.onDone != nil {
		q.onDone(item.msg, err)
	}
}

// drain flushes remaining queued messages on shutdown, best-effort.
func (q *Queue) drain() {
	for {
		select {
		case item := <-q.ch:
			q.deliver(item)
		default:
			return
		}
	}
}
