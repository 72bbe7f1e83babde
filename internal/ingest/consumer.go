package ingest

import (
	"context"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/opentraffic/citysim/internal/errs"
)

// handler is a sarama.ConsumerGroupHandler that marks a message's offset
// only after Processor.Process succeeds, giving the pipeline its
// at-least-once guarantee.
type handler struct {
	processor *Processor
	log       *log.Entry
}

func (h *handler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *handler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *handler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-sess.Context().Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.processor.Process(sess.Context(), msg.Value); err != nil {
				h.log.WithError(err).Warn("process failed, offset withheld for redelivery")
				continue
			}
			sess.MarkMessage(msg, "")
			sess.Commit()
		}
	}
}

// Consumer runs a sarama consumer group against raw-telemetry, dispatching
// every record to a Processor before committing its offset.
type Consumer struct {
	group sarama.ConsumerGroup
	h     *handler
}

// NewConsumer joins groupID on brokers, reading from the earliest offset
// for any partition with no committed offset.
func NewConsumer(brokers []string, groupID string, processor *Processor, logger *log.Entry) (*Consumer, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Offsets.AutoCommit.Enable = false
	cfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, errs.Bus("new consumer group", err)
	}

	return &Consumer{group: group, h: &handler{processor: processor, log: logger}}, nil
}

// Run joins the group for topic and blocks, rejoining after every rebalance,
// until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, topic string) error {
	go func() {
		for err := range c.group.Errors() {
			c.h.log.WithError(err).Warn("consumer group error")
		}
	}()

	for {
		if err := c.group.Consume(ctx, []string{topic}, c.h); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errs.Bus("consume", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close leaves the consumer group.
func (c *Consumer) Close() error {
	return c.group.Close()
}
