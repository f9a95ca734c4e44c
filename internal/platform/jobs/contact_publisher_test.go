package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/voltline/site/internal/services"
)

func TestPubSubContactPublisherPublishesMessage(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		t.Fatalf("pubsub.NewClient: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	topic, err := client.CreateTopic(ctx, "contact-messages")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}

	publisher, err := NewPubSubContactPublisher(topic)
	if err != nil {
		t.Fatalf("NewPubSubContactPublisher: %v", err)
	}
	defer publisher.Stop()
	if publisher.TopicName() != "contact-messages" {
		t.Fatalf("unexpected topic name %q", publisher.TopicName())
	}

	msg := services.ContactNotification{
		MessageID:   "01HZY0000000000000000000AA",
		Name:        "Jana Nováková",
		Email:       "jana@example.cz",
		Message:     "Poptávka wallboxu pro 12 parkovacích míst.",
		Locale:      "cs",
		SubmittedAt: time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC),
	}

	if _, err := publisher.PublishContact(ctx, msg); err != nil {
		t.Fatalf("PublishContact: %v", err)
	}

	messages := srv.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var payload services.ContactNotification
	if err := json.Unmarshal(messages[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.MessageID != msg.MessageID || payload.Email != msg.Email {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if attr := messages[0].Attributes["locale"]; attr != "cs" {
		t.Fatalf("expected locale attribute, got %q", attr)
	}
	if _, ok := messages[0].Attributes["productId"]; ok {
		t.Fatalf("empty productId attribute should be omitted")
	}
}

func TestNewPubSubContactPublisherRequiresTopic(t *testing.T) {
	if _, err := NewPubSubContactPublisher(nil); err == nil {
		t.Fatalf("expected error for nil topic")
	}
}
