package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Consumer reads pipeline events from Kafka topics and forwards them to the
// hub.
type Consumer struct {
	brokers []string
	topics  []string
	hub     *Hub
}

// NewConsumer creates a consumer for the given topics.
func NewConsumer(brokers, topics []string, hub *Hub) *Consumer {
	return &Consumer{brokers: brokers, topics: topics, hub: hub}
}

// Run starts one reader per topic and blocks until the context is canceled.
func (c *Consumer) Run(ctx context.Context) {
	for _, topic := range c.topics {
		go c.consume(ctx, topic)
	}
	<-ctx.Done()
}

func (c *Consumer) consume(ctx context.Context, topic string) {
	// Partition reader without a consumer group; the dashboard only mirrors
	// recent traffic and needs no offset commits.
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   c.brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	if err := reader.SetOffsetAt(ctx, time.Now().Add(-1*time.Hour)); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("could not seek, starting from first offset")
	}
	log.Info().Str("topic", topic).Msg("dashboard consuming events")

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Str("topic", topic).Msg("Kafka read error")
			time.Sleep(time.Second)
			continue
		}

		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("skipping unparseable event")
			continue
		}
		c.hub.Broadcast(event)
	}
}
