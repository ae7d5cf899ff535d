package amqprpc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RemoteError is an "error" reply from the server.
type RemoteError struct {
	Msg string
}

func (e *RemoteError) Error() string { return "remote: " + e.Msg }

// Client publishes calls and waits for replies on an exclusive queue.
type Client struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	queue   string
	replyTo string

	mu      sync.Mutex
	pending map[string]chan amqp.Delivery
	done    chan struct{}
}

// DialClient connects to the broker and starts routing replies.
func DialClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("amqp url is empty")
	}
	queue := cfg.Queue
	if queue == "" {
		queue = DefaultQueue
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare reply queue: %w", err)
	}
	replies, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("consume reply queue: %w", err)
	}

	c := &Client{
		conn:    conn,
		ch:      ch,
		queue:   queue,
		replyTo: q.Name,
		pending: make(map[string]chan amqp.Delivery),
		done:    make(chan struct{}),
	}
	go c.route(replies)
	return c, nil
}

func (c *Client) route(replies <-chan amqp.Delivery) {
	defer close(c.done)
	for d := range replies {
		c.mu.Lock()
		ch, ok := c.pending[d.CorrelationId]
		delete(c.pending, d.CorrelationId)
		c.mu.Unlock()
		if ok {
			ch <- d
		}
	}
}

// Call publishes one request and waits for its reply or ctx.
func (c *Client) Call(ctx context.Context, procedure, payload string) (string, error) {
	id := uuid.NewString()
	wait := make(chan amqp.Delivery, 1)
	c.mu.Lock()
	c.pending[id] = wait
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	err := c.ch.PublishWithContext(ctx, "", c.queue, false, false, amqp.Publishing{
		ContentType:   "application/json",
		Type:          procedure,
		CorrelationId: id,
		ReplyTo:       c.replyTo,
		Body:          []byte(payload),
	})
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", procedure, err)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		return "", errors.New("reply channel closed")
	case d := <-wait:
		if d.Type == TypeError {
			return "", &RemoteError{Msg: string(d.Body)}
		}
		return string(d.Body), nil
	}
}

// Close closes the channel and the connection.
func (c *Client) Close() error {
	_ = c.ch.Close()
	return c.conn.Close()
}
