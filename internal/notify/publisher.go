package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/preston-bernstein/screen-inventory-service/internal/logging"
	"github.com/preston-bernstein/screen-inventory-service/internal/metrics"
	"github.com/preston-bernstein/screen-inventory-service/internal/store"
)

const (
	DefaultExchange   = "inventory"
	DefaultRoutingKey = "inventory.updated"
	exchangeType      = "topic"
	contentType       = "application/json"

	defaultPublishTimeout = 5 * time.Second
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("notify: publisher closed")

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Config controls where inventory events are published.
type Config struct {
	URL            string
	Exchange       string
	RoutingKey     string
	PublishTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Exchange == "" {
		c.Exchange = DefaultExchange
	}
	if c.RoutingKey == "" {
		c.RoutingKey = DefaultRoutingKey
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = defaultPublishTimeout
	}
	return c
}

// InventoryUpdated is the message body sent for every store event.
type InventoryUpdated struct {
	EventID  string         `json:"eventId"`
	Kind     string         `json:"kind"`
	Seq      uint64         `json:"seq"`
	Total    int            `json:"total"`
	External int            `json:"external"`
	Local    int            `json:"local"`
	BySource map[string]int `json:"bySource"`
	At       time.Time      `json:"at"`
}

// Summarize reduces a store event to counts; the snapshot itself is not published.
func Summarize(e store.Event, eventID string) InventoryUpdated {
	msg := InventoryUpdated{
		EventID:  eventID,
		Kind:     string(e.Kind),
		Seq:      e.Seq,
		Total:    len(e.Snapshot),
		BySource: make(map[string]int),
		At:       e.At,
	}
	for _, sc := range e.Snapshot {
		if sc.Source.External {
			msg.External++
		} else {
			msg.Local++
		}
		msg.BySource[sc.Source.ID]++
	}
	return msg
}

// Publisher forwards store events to an AMQP exchange.
type Publisher struct {
	ch         Channel
	conn       io.Closer
	exchange   string
	routingKey string
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *metrics.Recorder
	newID      func() string

	mu     sync.Mutex
	closed bool
}

// NewPublisher wraps an already-open channel.
func NewPublisher(ch Channel, cfg Config, logger *slog.Logger, recorder *metrics.Recorder) *Publisher {
	cfg = cfg.withDefaults()
	return &Publisher{
		ch:         ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		timeout:    cfg.PublishTimeout,
		logger:     logger,
		metrics:    recorder,
		newID:      func() string { return uuid.NewString() },
	}
}

// Dial connects to the broker, declares the exchange, and returns a publisher owning the connection.
func Dial(cfg Config, logger *slog.Logger, recorder *metrics.Recorder) (*Publisher, error) {
	cfg = cfg.withDefaults()
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("notify: dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("notify: open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, exchangeType, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("notify: declare exchange %q: %w", cfg.Exchange, err)
	}
	p := NewPublisher(ch, cfg, logger, recorder)
	p.conn = conn
	logging.Info(logger, "inventory notifications enabled", "exchange", cfg.Exchange, "routing_key", cfg.RoutingKey)
	return p, nil
}

// Publish sends one event. Failures are counted and returned; they never affect the store.
func (p *Publisher) Publish(ctx context.Context, e store.Event) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}

	msg := Summarize(e, p.newID())
	body, err := json.Marshal(msg)
	if err != nil {
		p.metrics.RecordNotification(msg.Kind, err)
		return fmt.Errorf("notify: encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err = p.ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp.Publishing{
		ContentType:  contentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.EventID,
		Timestamp:    msg.At,
		Type:         p.routingKey,
		Body:         body,
	})
	p.metrics.RecordNotification(msg.Kind, err)
	if err != nil {
		return fmt.Errorf("notify: publish %s: %w", msg.Kind, err)
	}
	return nil
}

// Run publishes events until the channel closes or ctx ends. Publish errors are logged.
func (p *Publisher) Run(ctx context.Context, events <-chan store.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := p.Publish(ctx, e); err != nil {
				logging.Warn(p.logger, "inventory event not published",
					logging.FieldEvent, string(e.Kind),
					"error", err,
				)
			}
		}
	}
}

// Close releases the channel and, when dialed, the connection. Safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	var errs []error
	if p.ch != nil {
		if err := p.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
