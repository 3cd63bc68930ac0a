// Package realtime subscribes to backend change notifications over AMQP.
package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Subscriber implements port.EventSubscriber on a topic exchange. Each
// Subscribe call opens its own connection and an exclusive, auto-deleted
// queue bound with the event name as routing key.
type Subscriber struct {
	url      string
	exchange string
	logger   *zap.Logger

	mu        sync.Mutex
	connected bool
	lastErr   error
}

// NewSubscriber creates a subscriber for exchange on the broker at url.
func NewSubscriber(url, exchange string, logger *zap.Logger) *Subscriber {
	return &Subscriber{url: url, exchange: exchange, logger: logger}
}

// Subscribe connects and starts delivering events named event. The channel
// closes when ctx ends or the connection drops.
func (s *Subscriber) Subscribe(ctx context.Context, event string) (<-chan domain.RealtimeEvent, error) {
	conn, err := amqp091.Dial(s.url)
	if err != nil {
		s.setState(false, err)
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		s.setState(false, err)
		return nil, fmt.Errorf("open channel: %w", err)
	}

	deliveries, err := s.setup(ch, event)
	if err != nil {
		ch.Close()
		conn.Close()
		s.setState(false, err)
		return nil, err
	}

	s.setState(true, nil)
	s.logger.Info("realtime subscription started",
		zap.String("exchange", s.exchange),
		zap.String("event", event),
	)

	out := make(chan domain.RealtimeEvent)
	closed := conn.NotifyClose(make(chan *amqp091.Error, 1))

	go func() {
		defer close(out)
		defer conn.Close()
		defer ch.Close()

		for {
			select {
			case <-ctx.Done():
				s.setState(false, nil)
				return
			case amqpErr, ok := <-closed:
				var err error
				if ok && amqpErr != nil {
					err = amqpErr
				}
				s.setState(false, err)
				s.logger.Warn("realtime connection closed", zap.Error(err))
				return
			case d, ok := <-deliveries:
				if !ok {
					s.setState(false, nil)
					return
				}
				if d.RoutingKey != event {
					continue
				}
				ev := domain.RealtimeEvent{Name: d.RoutingKey, ReceivedAt: time.Now()}
				select {
				case out <- ev:
				case <-ctx.Done():
					s.setState(false, nil)
					return
				}
			}
		}
	}()

	return out, nil
}

func (s *Subscriber) setup(ch *amqp091.Channel, event string) (<-chan amqp091.Delivery, error) {
	err := ch.ExchangeDeclare(
		s.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, event, s.exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	deliveries, err := ch.Consume(
		q.Name, // queue
		"",     // consumer
		true,   // auto-ack: a missed refresh is harmless
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return nil, fmt.Errorf("start consuming: %w", err)
	}
	return deliveries, nil
}

func (s *Subscriber) setState(connected bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
	if err != nil {
		s.lastErr = err
	}
}

// Status reports whether a subscription is live and the last failure seen.
func (s *Subscriber) Status() (connected bool, lastErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected, s.lastErr
}
