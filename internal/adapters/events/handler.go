package events

import (
	"context"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var claimLag = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "catalog_events_claim_lag",
		Help: "Catalog events behind the partition high-water mark after the last applied event.",
	},
	[]string{"partition"},
)

type eventApplier func(context.Context, *sarama.ConsumerMessage) error

// catalogClaimHandler feeds each claimed partition through apply and marks an
// event only once it has been applied.
type catalogClaimHandler struct {
	apply eventApplier
	log   zerolog.Logger
}

func (c *Consumer) claimHandler() *catalogClaimHandler {
	return &catalogClaimHandler{apply: c.ProcessOne, log: c.log}
}

func (h *catalogClaimHandler) Setup(s sarama.ConsumerGroupSession) error {
	h.log.Info().
		Int32("generation", s.GenerationID()).
		Interface("claims", s.Claims()).
		Msg("catalog partitions assigned")
	return nil
}

func (h *catalogClaimHandler) Cleanup(s sarama.ConsumerGroupSession) error {
	h.log.Debug().Int32("generation", s.GenerationID()).Msg("catalog partitions released")
	return nil
}

func (h *catalogClaimHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	partition := strconv.Itoa(int(claim.Partition()))
	log := h.log.With().Str("topic", claim.Topic()).Int32("partition", claim.Partition()).Logger()

	applied := 0
	log.Debug().Int64("initial_offset", claim.InitialOffset()).Msg("catalog claim started")
	defer func() { log.Debug().Int("events", applied).Msg("catalog claim ended") }()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("catalog claim partition=%s: %w", partition, ctx.Err())
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.apply(ctx, msg); err != nil {
				return fmt.Errorf("apply catalog event (topic=%s, part=%d, off=%d): %w",
					msg.Topic, msg.Partition, msg.Offset, err)
			}
			sess.MarkMessage(msg, "")
			applied++
			claimLag.WithLabelValues(partition).Set(float64(max(claim.HighWaterMarkOffset()-msg.Offset-1, 0)))
		}
	}
}
