package sim

import (
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/opentraffic/citysim/internal/errs"
	"github.com/opentraffic/citysim/internal/obs"
	"github.com/opentraffic/citysim/internal/wire"
)

const publishTimeout = 5 * time.Second

// Producer publishes VehiclePosition records to raw-telemetry, keyed by
// vehicle id for stable per-vehicle ordering. Publishing is fire-and-forget:
// a full producer input channel after publishTimeout is logged and dropped,
// never retried.
type Producer struct {
	async   sarama.AsyncProducer
	topic   string
	log     *log.Entry
	metrics *obs.SimMetrics
}

// NewProducer builds a Producer from a broker list, logging delivery errors
// from sarama's error channel in the background for as long as the
// producer lives.
func NewProducer(brokers []string, topic string, logger *log.Entry, metrics *obs.SimMetrics) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Return.Successes = false
	cfg.Producer.Return.Errors = true
	cfg.Producer.Partitioner = sarama.NewHashPartitioner

	ap, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, errs.Bus("new producer", err)
	}

	p := &Producer{async: ap, topic: topic, log: logger, metrics: metrics}
	go p.drainErrors()
	return p, nil
}

func (p *Producer) drainErrors() {
	for perr := range p.async.Errors() {
		p.log.WithError(perr.Err).Warn("bus publish failed, dropping record")
		if p.metrics != nil {
			p.metrics.PublishesFailed.Inc()
		}
	}
}

// Publish encodes pos and enqueues it for delivery, keyed by vehicle id. It
// does not wait for broker acknowledgement; it only waits up to
// publishTimeout for room in the producer's input channel, after which the
// record is dropped.
func (p *Producer) Publish(pos wire.VehiclePosition) {
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(pos.VehicleID),
		Value: sarama.ByteEncoder(wire.Encode(pos)),
	}

	select {
	case p.async.Input() <- msg:
		if p.metrics != nil {
			p.metrics.PublishesSent.Inc()
		}
	case <-time.After(publishTimeout):
		p.log.WithField("vehicle_id", pos.VehicleID).Warn("bus publish timed out, dropping record")
		if p.metrics != nil {
			p.metrics.PublishesFailed.Inc()
		}
	}
}

// Close shuts the underlying producer down.
func (p *Producer) Close() error {
	return p.async.Close()
}
