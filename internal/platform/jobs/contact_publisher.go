// Package jobs publishes background work to Pub/Sub.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/voltline/site/internal/platform/textutil"
	"github.com/voltline/site/internal/services"
)

// PubSubContactPublisher fans contact form submissions out to a Pub/Sub
// topic consumed by the sales notification worker.
type PubSubContactPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

func NewPubSubContactPublisher(topic *pubsub.Topic) (*PubSubContactPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub contact publisher: topic is required")
	}
	return &PubSubContactPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishContact blocks until the server acknowledges the message.
func (p *PubSubContactPublisher) PublishContact(ctx context.Context, message services.ContactNotification) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub contact publisher: not initialised")
	}

	data, err := p.marshal(message)
	if err != nil {
		return "", fmt.Errorf("marshal contact notification: %w", err)
	}

	attrs := textutil.CompactStringMap(map[string]string{
		"messageId": message.MessageID,
		"locale":    message.Locale,
		"productId": message.ProductID,
	})

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish contact notification: %w", err)
	}
	return id, nil
}

// Stop flushes pending messages.
func (p *PubSubContactPublisher) Stop() {
	if p != nil && p.topic != nil {
		p.topic.Stop()
	}
}

// TopicName is used by readiness logs.
func (p *PubSubContactPublisher) TopicName() string {
	if p == nil || p.topic == nil {
		return ""
	}
	return strings.TrimSpace(p.topic.ID())
}
