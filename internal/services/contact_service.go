package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/platform/pagination"
	"github.com/voltline/site/internal/repositories"
)

const (
	contactLoggerEventStored        = "contact.stored"
	contactLoggerEventPublishFailed = "contact.publish_failed"
	contactLoggerEventRateLimited   = "contact.rate_limited"

	maxContactNameLength    = 120
	maxContactMessageLength = 5000
	limiterIdleTTL          = 30 * time.Minute
)

// ContactServiceDeps bundles constructor inputs for the contact service.
type ContactServiceDeps struct {
	Contact   repositories.ContactRepository
	Publisher ContactPublisher
	Supported []string
	// RatePerMinute and Burst size the per-client token bucket.
	RatePerMinute int
	Burst         int
	Clock         func() time.Time
	IDGen         func() string
	Logger        LoggerFunc
}

type contactService struct {
	repo      repositories.ContactRepository
	publisher ContactPublisher
	supported map[string]struct{}
	limiters  *clientLimiters
	policy    *bluemonday.Policy
	clock     func() time.Time
	newID     func() string
	logger    LoggerFunc
}

var _ ContactService = (*contactService)(nil)

func NewContactService(deps ContactServiceDeps) (ContactService, error) {
	if deps.Contact == nil {
		return nil, errors.New("contact service: contact repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = nopLogger
	}
	perMinute, burst := deps.RatePerMinute, deps.Burst
	if perMinute <= 0 {
		perMinute = 5
	}
	if burst <= 0 {
		burst = 3
	}
	supported := make(map[string]struct{}, len(deps.Supported))
	for _, code := range deps.Supported {
		supported[domain.NormalizeLocale(code)] = struct{}{}
	}
	return &contactService{
		repo:      deps.Contact,
		publisher: deps.Publisher,
		supported: supported,
		limiters:  newClientLimiters(rate.Limit(float64(perMinute)/60), burst, clock),
		policy:    bluemonday.StrictPolicy(),
		clock:     func() time.Time { return clock().UTC() },
		newID:     idGen,
		logger:    logger,
	}, nil
}

// Submit validates, rate limits per client IP and stores the message, then
// publishes a notification. A failed publish is logged and does not fail
// the submission.
func (s *contactService) Submit(ctx context.Context, cmd ContactCommand) (domain.ContactMessage, error) {
	msg := domain.ContactMessage{
		Name:      s.clean(cmd.Name),
		Email:     strings.TrimSpace(cmd.Email),
		Phone:     s.clean(cmd.Phone),
		Company:   s.clean(cmd.Company),
		Message:   s.clean(cmd.Message),
		Locale:    domain.NormalizeLocale(cmd.Locale),
		ProductID: strings.TrimSpace(cmd.ProductID),
		RemoteIP:  strings.TrimSpace(cmd.RemoteIP),
	}
	if err := s.validate(msg); err != nil {
		return domain.ContactMessage{}, err
	}
	if !s.limiters.allow(msg.RemoteIP) {
		s.logger(ctx, contactLoggerEventRateLimited, map[string]any{"remoteIp": msg.RemoteIP})
		return domain.ContactMessage{}, ErrContactRateLimited
	}

	msg.ID = s.newID()
	msg.CreatedAt = s.clock()
	if err := s.repo.Insert(ctx, msg); err != nil {
		return domain.ContactMessage{}, err
	}
	s.logger(ctx, contactLoggerEventStored, map[string]any{"messageId": msg.ID, "locale": msg.Locale})

	if s.publisher != nil {
		_, err := s.publisher.PublishContact(ctx, ContactNotification{
			MessageID:   msg.ID,
			Name:        msg.Name,
			Email:       msg.Email,
			Phone:       msg.Phone,
			Company:     msg.Company,
			Message:     msg.Message,
			Locale:      msg.Locale,
			ProductID:   msg.ProductID,
			SubmittedAt: msg.CreatedAt,
		})
		if err != nil {
			s.logger(ctx, contactLoggerEventPublishFailed, map[string]any{"messageId": msg.ID, "error": err})
		}
	}
	return msg, nil
}

func (s *contactService) List(ctx context.Context, params pagination.Params) (domain.ListResult[domain.ContactMessage], error) {
	if params.Limit <= 0 {
		params.Limit = pagination.DefaultLimit
	}
	return s.repo.List(ctx, repositories.ListOptions{Offset: params.Offset(), Limit: params.Limit})
}

// clean strips markup so stored text is plain. The strict policy escapes
// entities, which are decoded again because output is escaped on render.
func (s *contactService) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(strings.TrimSpace(value))))
}

func (s *contactService) validate(msg domain.ContactMessage) error {
	fields := fieldErrors{}
	switch {
	case msg.Name == "":
		fields.add("name", "required")
	case utf8.RuneCountInString(msg.Name) > maxContactNameLength:
		fields.add("name", fmt.Sprintf("at most %d characters", maxContactNameLength))
	}
	if msg.Email == "" {
		fields.add("email", "required")
	} else if addr, err := mail.ParseAddress(msg.Email); err != nil || addr.Address != msg.Email {
		fields.add("email", "invalid address")
	}
	switch {
	case msg.Message == "":
		fields.add("message", "required")
	case utf8.RuneCountInString(msg.Message) > maxContactMessageLength:
		fields.add("message", fmt.Sprintf("at most %d characters", maxContactMessageLength))
	}
	if msg.Locale != "" && len(s.supported) > 0 {
		if _, ok := s.supported[msg.Locale]; !ok {
			fields.add("locale", "unsupported locale")
		}
	}
	return fields.err(ErrContactInvalid)
}

// clientLimiters keeps one token bucket per client key and forgets idle ones.
type clientLimiters struct {
	limit rate.Limit
	burst int
	clock func() time.Time

	mu        sync.Mutex
	entries   map[string]*limiterEntry
	lastSweep time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(limit rate.Limit, burst int, clock func() time.Time) *clientLimiters {
	return &clientLimiters{limit: limit, burst: burst, clock: clock, entries: map[string]*limiterEntry{}}
}

func (c *clientLimiters) allow(key string) bool {
	now := c.clock()
	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastSweep) > limiterIdleTTL {
		for k, entry := range c.entries {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(c.entries, k)
			}
		}
		c.lastSweep = now
	}

	entry, ok := c.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.entries[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}
