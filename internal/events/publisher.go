package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"maumcare/internal/config"
	"maumcare/internal/models"
)

const (
	defaultExchange   = "maumcare.reports"
	defaultRoutingKey = "conversation.end"
)

// EndReportMessage is the body published when a conversation ends.
type EndReportMessage struct {
	Key       string           `json:"key"`
	EndedAt   int64            `json:"ended_at"`
	EndReport models.EndReport `json:"end_report"`
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends end-of-conversation reports to RabbitMQ. A nil Publisher
// drops messages silently.
type Publisher struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	channel    channel
	exchange   string
	routingKey string
	reopen     func() (channel, error)
	now        func() time.Time
}

// Dial connects to the broker and declares the durable topic exchange.
func Dial(cfg config.EventsConfig) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("events url required")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq connect: %w", err)
	}
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = defaultExchange
	}
	open := func() (channel, error) {
		ch, err := conn.Channel()
		if err != nil {
			return nil, fmt.Errorf("rabbitmq channel: %w", err)
		}
		if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
			ch.Close()
			return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
		}
		return ch, nil
	}
	ch, err := open()
	if err != nil {
		conn.Close()
		return nil, err
	}
	p := newPublisher(ch, exchange, cfg.RoutingKey)
	p.conn = conn
	p.reopen = open
	return p, nil
}

func newPublisher(ch channel, exchange, routingKey string) *Publisher {
	if routingKey == "" {
		routingKey = defaultRoutingKey
	}
	return &Publisher{
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
		now:        time.Now,
	}
}

// PublishEndReport sends a persistent JSON message for the stored conversation key.
func (p *Publisher) PublishEndReport(ctx context.Context, key string, report models.EndReport) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(EndReportMessage{Key: key, EndedAt: p.now().Unix(), EndReport: report})
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    p.now(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg)
	if errors.Is(err, amqp.ErrClosed) && p.reopen != nil {
		ch, rerr := p.reopen()
		if rerr != nil {
			return fmt.Errorf("publish end report: %w", rerr)
		}
		p.channel = ch
		err = p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg)
	}
	if err != nil {
		return fmt.Errorf("publish end report: %w", err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
