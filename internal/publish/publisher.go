// Package publish announces wallet scores on an AMQP exchange.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/observability"
)

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// ScorePublisher publishes one persistent JSON message per scored wallet.
type ScorePublisher struct {
	ch         Channel
	conn       *amqp.Connection // nil when built over a bare channel
	exchange   string
	routingKey string
	metrics    *observability.Metrics
	logger     zerolog.Logger
}

// Options configures a ScorePublisher.
type Options struct {
	Exchange   string
	RoutingKey string
	Metrics    *observability.Metrics
	Logger     zerolog.Logger
}

// Dial connects to url, opens a channel and declares the exchange.
func Dial(url string, opts Options) (*ScorePublisher, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 30 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}
	p, err := NewScorePublisher(ch, opts)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewScorePublisher declares a durable topic exchange on ch.
func NewScorePublisher(ch Channel, opts Options) (*ScorePublisher, error) {
	if err := ch.ExchangeDeclare(
		opts.Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", opts.Exchange, err)
	}
	return &ScorePublisher{
		ch:         ch,
		exchange:   opts.Exchange,
		routingKey: opts.RoutingKey,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}, nil
}

// Name returns sink name.
func (p *ScorePublisher) Name() string { return "amqp_publish" }

// Write publishes every record of the batch. It stops at the first failure.
func (p *ScorePublisher) Write(ctx context.Context, batch *domain.ScoreBatch) error {
	published := 0
	for _, r := range batch.Records() {
		if err := ctx.Err(); err != nil {
			p.metrics.RecordPublish(published, nil)
			return err
		}
		body, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal score for %s: %w", r.WalletAddress, err)
		}
		msg := amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    r.RunID + ":" + r.WalletAddress,
			Timestamp:    time.Unix(r.ScoredAt, 0).UTC(),
			Headers:      amqp.Table{"run_id": r.RunID},
			Body:         body,
		}
		if err := p.ch.Publish(p.exchange, p.routingKey, false, false, msg); err != nil {
			p.metrics.RecordPublish(published, nil)
			p.metrics.RecordPublish(1, err)
			return fmt.Errorf("publish score for %s: %w", r.WalletAddress, err)
		}
		published++
	}
	p.metrics.RecordPublish(published, nil)
	p.logger.Debug().Int("messages", published).Str("exchange", p.exchange).Msg("scores published")
	return nil
}

// Close closes the channel and, when owned, the connection.
func (p *ScorePublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
