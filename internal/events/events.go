// Package events publishes link lifecycle events to Kafka. Publishing is
// fire-and-forget off the request path: a broker outage never fails a
// shorten or delete.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shortenhub/shorten/internal/infrastructure/logger"
	"github.com/shortenhub/shorten/internal/processing/links"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	TypeLinkCreated = "link.created"
	TypeLinkDeleted = "link.deleted"
)

// Event is the wire shape of one lifecycle event. The key of the Kafka
// message is the link id, keeping per-link ordering within a partition.
type Event struct {
	EventID    string `json:"eventId"`
	Type       string `json:"type"`
	LinkID     string `json:"linkId"`
	Identity   string `json:"identity"`
	Provider   string `json:"provider,omitempty"`
	Alias      string `json:"alias,omitempty"`
	ShortURL   string `json:"shortUrl,omitempty"`
	OccurredAt int64  `json:"occurredAt"`
}

// Publisher writes events to one topic.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// LinkCreated emits a creation event for a stored link.
func (p *Publisher) LinkCreated(ctx context.Context, identity links.Identity, link links.ShortenedLink) {
	p.publish(ctx, Event{
		EventID:    uuid.New().String(),
		Type:       TypeLinkCreated,
		LinkID:     link.ID,
		Identity:   string(identity),
		Provider:   string(link.Provider),
		Alias:      link.Alias,
		ShortURL:   link.ShortURL,
		OccurredAt: time.Now().UnixMilli(),
	})
}

// LinkDeleted emits a deletion event for a removed link id.
func (p *Publisher) LinkDeleted(ctx context.Context, identity links.Identity, id string) {
	p.publish(ctx, Event{
		EventID:    uuid.New().String(),
		Type:       TypeLinkDeleted,
		LinkID:     id,
		Identity:   string(identity),
		OccurredAt: time.Now().UnixMilli(),
	})
}

func (p *Publisher) publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to marshal link event", zap.Error(err))
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(event.LinkID),
		Value: payload,
	})
	if err != nil {
		logger.Warn("failed to publish link event",
			zap.String("type", event.Type),
			zap.String("link_id", event.LinkID),
			zap.Error(err))
	}
}
