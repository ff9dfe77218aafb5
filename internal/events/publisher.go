// Package events publishes encounter lifecycle events to Kafka so downstream
// consumers (the dashboard, practice management integrations) can react to
// completed analyses and generated artefacts.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"clinical-scribe/internal/observability/metrics"
)

// Event type values carried in the published payloads.
const (
	TypeEncounterAnalyzed = "encounter.analyzed"
	TypeArtefactGenerated = "artefact.generated"
)

// Publisher writes analysis and artefact events to separate Kafka topics.
// When disabled it degrades to log-only mode, so the pipeline never depends
// on a broker being reachable.
type Publisher struct {
	writerAnalysis *kafka.Writer
	writerArtefact *kafka.Writer
	principal      string
	topicAnalysis  string
	topicArtefact  string
	enabled        bool
	metrics        *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers       []string
	TopicAnalysis string
	TopicArtefact string
	Principal     string
	Enabled       bool
}

// New creates a Kafka event publisher. A nil or disabled config yields a
// log-only publisher.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil || !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, events will be logged only")
		p := &Publisher{enabled: false, metrics: m}
		if cfg != nil {
			p.principal = cfg.Principal
			p.topicAnalysis = cfg.TopicAnalysis
			p.topicArtefact = cfg.TopicArtefact
		}
		return p
	}

	// Longer dial timeout for DNS resolution inside Kubernetes.
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
			Transport:    transport,
		}
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicAnalysis", cfg.TopicAnalysis).
		Str("topicArtefact", cfg.TopicArtefact).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerAnalysis: newWriter(cfg.TopicAnalysis),
		writerArtefact: newWriter(cfg.TopicArtefact),
		principal:      cfg.Principal,
		topicAnalysis:  cfg.TopicAnalysis,
		topicArtefact:  cfg.TopicArtefact,
		enabled:        true,
		metrics:        m,
	}
}

// PublishAnalysis publishes an encounter analysis event keyed by encounter id.
func (p *Publisher) PublishAnalysis(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerAnalysis, p.topicAnalysis, TypeEncounterAnalyzed, key, event)
}

// PublishArtefact publishes an artefact generated event keyed by encounter id.
func (p *Publisher) PublishArtefact(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerArtefact, p.topicArtefact, TypeArtefactGenerated, key, event)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes the Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerAnalysis != nil {
		if e := p.writerAnalysis.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing analysis writer")
			err = e
		}
	}
	if p.writerArtefact != nil {
		if e := p.writerArtefact.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing artefact writer")
			err = e
		}
	}
	return err
}
