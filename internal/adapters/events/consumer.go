package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var eventsConsumed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_events_total",
		Help: "Catalog change events consumed, by op and outcome.",
	},
	[]string{"op", "outcome"},
)

// Invalidator drops cached catalog state.
type Invalidator interface {
	Invalidate()
}

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

type Consumer struct {
	cfg    Config
	target Invalidator
	log    zerolog.Logger
}

func NewConsumer(cfg Config, target Invalidator, log zerolog.Logger) *Consumer {
	return &Consumer{
		cfg:    cfg,
		target: target,
		log:    log.With().Str("component", "catalog_events").Logger(),
	}
}

// Start joins the consumer group and processes events until ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	if c.target == nil {
		return errors.New("catalog events: missing invalidation target")
	}
	if len(c.cfg.Brokers) == 0 || c.cfg.Topic == "" || c.cfg.GroupID == "" {
		return errors.New("catalog events: brokers, topic and group id are required")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := c.claimHandler()

	c.log.Info().Strs("brokers", c.cfg.Brokers).Str("topic", c.cfg.Topic).Str("group", c.cfg.GroupID).
		Msg("catalog events consumer starting")

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("catalog events consumer shutting down")
			return nil
		default:
			if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
				if ctx.Err() != nil {
					continue
				}
				c.log.Error().Err(err).Strs("brokers", c.cfg.Brokers).Str("topic", c.cfg.Topic).
					Msg("kafka consumer error")

				timer := time.NewTimer(2 * time.Second)
				select {
				case <-ctx.Done():
					timer.Stop()
				case <-timer.C:
				}
			}
		}
	}
}

// ProcessOne applies a single event. Undecodable or invalid events are
// logged and skipped so they never block the partition.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		eventsConsumed.WithLabelValues("unknown", "decode_error").Inc()
		c.log.Error().Err(err).
			Str("kind", "decode").
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("skipping catalog event")
		return nil
	}

	if err := ev.Validate(); err != nil {
		eventsConsumed.WithLabelValues("unknown", "invalid").Inc()
		c.log.Error().Err(err).
			Str("kind", "validate").
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("skipping catalog event")
		return nil
	}

	c.target.Invalidate()
	eventsConsumed.WithLabelValues(ev.Op, "applied").Inc()

	c.log.Info().
		Str("op", ev.Op).
		Int("stations", len(ev.StationIDs)).
		Int64("offset", msg.Offset).
		Msg("station catalog invalidated")

	return nil
}
