package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voltline/site/internal/platform/pagination"
	"github.com/voltline/site/internal/repositories/memory"
)

type stubContactPublisher struct {
	err           error
	notifications []ContactNotification
}

func (p *stubContactPublisher) PublishContact(_ context.Context, n ContactNotification) (string, error) {
	p.notifications = append(p.notifications, n)
	if p.err != nil {
		return "", p.err
	}
	return "msg-1", nil
}

func validContact() ContactCommand {
	return ContactCommand{
		Name:     "Jana Nováková",
		Email:    "jana@example.cz",
		Message:  "Kolik stojí instalace wallboxu?",
		Locale:   "cs",
		RemoteIP: "203.0.113.7",
	}
}

func TestContactService_SubmitStoresAndPublishes(t *testing.T) {
	registry := memory.NewStore()
	publisher := &stubContactPublisher{}
	svc, err := NewContactService(ContactServiceDeps{
		Contact:   registry.Contact(),
		Publisher: publisher,
		Supported: testSupported,
		Clock:     fixedClock(testNow),
		IDGen:     sequentialIDs("msg"),
	})
	require.NoError(t, err)

	cmd := validContact()
	cmd.Message = "<b>Dobrý den</b>, potřebuji <script>alert(1)</script>nabídku & termín"
	msg, err := svc.Submit(context.Background(), cmd)
	require.NoError(t, err)
	require.Equal(t, "msg001", msg.ID)
	require.Equal(t, "Dobrý den, potřebuji nabídku & termín", msg.Message)

	require.Len(t, publisher.notifications, 1)
	require.Equal(t, msg.ID, publisher.notifications[0].MessageID)
	require.True(t, publisher.notifications[0].SubmittedAt.Equal(testNow))

	listed, err := svc.List(context.Background(), pagination.Params{Page: 1})
	require.NoError(t, err)
	require.Equal(t, 1, listed.Total)
}

func TestContactService_PublishFailureIsNotFatal(t *testing.T) {
	logger := &recordingLogger{}
	svc, err := NewContactService(ContactServiceDeps{
		Contact:   memory.NewStore().Contact(),
		Publisher: &stubContactPublisher{err: errors.New("topic not found")},
		Supported: testSupported,
		Logger:    logger.log,
	})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), validContact())
	require.NoError(t, err)
	require.Equal(t, 1, logger.count(contactLoggerEventPublishFailed))
}

func TestContactService_Validation(t *testing.T) {
	svc, err := NewContactService(ContactServiceDeps{Contact: memory.NewStore().Contact(), Supported: testSupported})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), ContactCommand{
		Name:    "<i></i>",
		Email:   "Jana <jana@example.cz>",
		Message: "   ",
		Locale:  "fr",
	})
	require.ErrorIs(t, err, ErrContactInvalid)
	fields := FieldErrors(err)
	require.Contains(t, fields, "name")
	require.Contains(t, fields, "email")
	require.Contains(t, fields, "message")
	require.Contains(t, fields, "locale")
}

func TestContactService_RateLimitsPerClient(t *testing.T) {
	now := testNow
	svc, err := NewContactService(ContactServiceDeps{
		Contact:       memory.NewStore().Contact(),
		Supported:     testSupported,
		RatePerMinute: 1,
		Burst:         2,
		Clock:         func() time.Time { return now },
	})
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Submit(ctx, validContact())
		require.NoError(t, err)
	}
	_, err = svc.Submit(ctx, validContact())
	require.ErrorIs(t, err, ErrContactRateLimited)

	other := validContact()
	other.RemoteIP = "198.51.100.4"
	_, err = svc.Submit(ctx, other)
	require.NoError(t, err, "another client has its own bucket")

	now = now.Add(2 * time.Minute)
	_, err = svc.Submit(ctx, validContact())
	require.NoError(t, err, "tokens refill over time")
}

func TestClientLimiters_SweepsIdleEntries(t *testing.T) {
	now := testNow
	limiters := newClientLimiters(1, 1, func() time.Time { return now })
	require.True(t, limiters.allow("a"))
	require.Len(t, limiters.entries, 1)

	now = now.Add(limiterIdleTTL + time.Second)
	require.True(t, limiters.allow("b"))
	require.Len(t, limiters.entries, 1)
	require.Contains(t, limiters.entries, "b")
}
