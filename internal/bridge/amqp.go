package bridge

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the distributed fan-out channel between processes.
// Ready reports whether the local subscription is established; callers
// fall back to local delivery while it is false, because remote delivery
// cannot be relied upon until the subscribe handshake completes.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
	Ready() bool
	Close() error
}

// ErrNotReady is returned when the bridge has no established channel.
var ErrNotReady = errors.New("bridge not ready")

const (
	reconnectBase = time.Second
	reconnectMax  = 30 * time.Second
)

// AMQP bridges processes through a RabbitMQ fanout exchange. Every process
// consumes from its own exclusive queue bound to the exchange, so each
// published envelope (including this process's own) arrives back exactly
// once per process.
//
// Connection and subscription failures are logged on state transitions
// only; the bridge keeps retrying in the background and chat continues in
// local-only mode meanwhile. A broker that acks publishes and then drops
// deliveries is undetectable here; at-least-once is the contract.
type AMQP struct {
	url      string
	exchange string
	handler  func(body []byte)

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel

	ready      atomic.Bool
	closed     atomic.Bool
	downLogged atomic.Bool
}

// NewAMQP starts the bridge. handler is invoked for every envelope
// delivered by the exchange, on the consumer goroutine.
func NewAMQP(url, exchange string, handler func(body []byte)) *AMQP {
	a := &AMQP{url: url, exchange: exchange, handler: handler}
	go a.run()
	return a
}

func (a *AMQP) run() {
	backoff := reconnectBase
	for !a.closed.Load() {
		closeCh, err := a.connect()
		if err != nil {
			a.logDown(err)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > reconnectMax {
				backoff = reconnectMax
			}
			continue
		}

		backoff = reconnectBase
		a.logUp()

		// Blocks until the broker connection drops.
		amqpErr := <-closeCh
		a.ready.Store(false)
		if a.closed.Load() {
			return
		}
		a.logDown(amqpErr)
	}
}

func (a *AMQP) connect() (chan *amqp.Error, error) {
	conn, err := amqp.Dial(a.url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(a.exchange, "fanout", false, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	// Exclusive auto-delete queue per process; the broker names it.
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if err := ch.QueueBind(q.Name, "", a.exchange, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	go func() {
		for d := range deliveries {
			a.handler(d.Body)
		}
	}()

	closeCh := conn.NotifyClose(make(chan *amqp.Error, 1))

	a.mu.Lock()
	a.conn = conn
	a.ch = ch
	a.mu.Unlock()
	a.ready.Store(true)
	return closeCh, nil
}

// Publish sends an envelope to the fanout exchange.
func (a *AMQP) Publish(ctx context.Context, body []byte) error {
	if !a.ready.Load() {
		return ErrNotReady
	}
	a.mu.Lock()
	ch := a.ch
	a.mu.Unlock()
	if ch == nil {
		return ErrNotReady
	}
	return ch.PublishWithContext(ctx, a.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// Ready reports whether the subscription handshake has completed.
func (a *AMQP) Ready() bool {
	return a.ready.Load()
}

// Close stops reconnecting and tears down the connection.
func (a *AMQP) Close() error {
	a.closed.Store(true)
	a.ready.Store(false)
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ch != nil {
		_ = a.ch.Close()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}

func (a *AMQP) logDown(err error) {
	if a.downLogged.CompareAndSwap(false, true) {
		log.Printf("bridge: unavailable, degraded to local-only: %v", err)
	}
}

func (a *AMQP) logUp() {
	a.downLogged.Store(false)
	log.Printf("bridge: connected exchange=%s", a.exchange)
}
