// Package amqprpc serves registered procedures over RabbitMQ request/reply.
//
// A request carries the procedure name in the message Type and the payload in
// the body. The reply goes to ReplyTo with the request's CorrelationId; its
// Type is "result" or "error".
package amqprpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"vtodo/internal/logging"
	"vtodo/internal/transport"
)

// DefaultQueue is used when Config.Queue is empty.
const DefaultQueue = "vtodo.rpc"

// Reply message types.
const (
	TypeResult = "result"
	TypeError  = "error"
)

// Config describes the broker connection.
type Config struct {
	URL   string
	Queue string
}

// Server consumes procedure calls from one durable queue.
type Server struct {
	inv   transport.Invoker
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	log   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = logging.Named(l, "amqprpc") }
}

// Dial connects to the broker and declares the request queue.
func Dial(cfg Config, inv transport.Invoker, opts ...Option) (*Server, error) {
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
	// One unacknowledged delivery at a time keeps calls in queue order.
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	s := &Server{inv: inv, conn: conn, ch: ch, queue: queue, log: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Serve handles calls on a single consumer until ctx is cancelled or the
// delivery channel closes.
func (s *Server) Serve(ctx context.Context) error {
	msgs, err := s.ch.ConsumeWithContext(ctx, s.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", s.queue, err)
	}
	s.log.Info("consuming", "queue", s.queue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("delivery channel closed")
			}
			s.deliver(ctx, d)
		}
	}
}

func (s *Server) deliver(ctx context.Context, d amqp.Delivery) {
	reply := s.handle(ctx, d.Type, string(d.Body))
	if d.ReplyTo != "" {
		reply.CorrelationId = d.CorrelationId
		if err := s.ch.PublishWithContext(ctx, "", d.ReplyTo, false, false, reply); err != nil {
			s.log.Warn("reply failed", "procedure", d.Type, "correlation_id", d.CorrelationId, "err", err)
		}
	}
	if err := d.Ack(false); err != nil {
		s.log.Warn("ack failed", "err", err)
	}
}

// handle runs one call and builds the reply message.
func (s *Server) handle(ctx context.Context, procedure, payload string) amqp.Publishing {
	result, err := s.inv.Invoke(ctx, procedure, payload)
	if err != nil {
		s.log.Warn("call failed", "procedure", procedure, "err", err)
		return amqp.Publishing{ContentType: "text/plain", Type: TypeError, Body: []byte(err.Error())}
	}
	return amqp.Publishing{ContentType: "text/plain", Type: TypeResult, Body: []byte(result)}
}

// Close closes the channel and the connection.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
