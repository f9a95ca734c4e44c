// Package secrets resolves secret:// configuration values against Google
// Secret Manager, with an in-process cache and a local fallback file for
// development.
package secrets

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultFallbackPath = ".secrets.local"
	meterName           = "github.com/voltline/site/internal/platform/secrets"
)

var ErrNotFound = errors.New("secrets: value not found")

type accessClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// Resolver implements config.SecretResolver.
type Resolver struct {
	client     accessClient
	ownsClient bool
	projectID  string
	logger     *zap.Logger

	fallbackPath string
	fallbackOnce sync.Once
	fallback     map[string]string

	mu    sync.RWMutex
	cache map[string]string

	lookups metric.Int64Counter
}

type Option func(*Resolver)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFallbackFile points at a KEY=VALUE file consulted when Secret Manager
// is unreachable or lacks the secret. An empty path disables the fallback.
func WithFallbackFile(path string) Option {
	return func(r *Resolver) { r.fallbackPath = strings.TrimSpace(path) }
}

func withClient(client accessClient) Option {
	return func(r *Resolver) { r.client = client }
}

// NewResolver dials Secret Manager. A dial failure leaves the resolver in
// fallback-only mode rather than failing startup.
func NewResolver(ctx context.Context, projectID string, opts []Option, clientOpts ...option.ClientOption) *Resolver {
	r := &Resolver{
		projectID:    strings.TrimSpace(projectID),
		logger:       zap.NewNop(),
		fallbackPath: defaultFallbackPath,
		cache:        map[string]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	counter, err := otel.Meter(meterName).Int64Counter("site.secrets.lookups",
		metric.WithDescription("Secret lookups by source"))
	if err != nil {
		r.logger.Warn("secrets: metric registration failed", zap.Error(err))
	}
	r.lookups = counter

	if r.client == nil && r.projectID != "" {
		client, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			r.logger.Warn("secrets: secret manager unavailable; using fallback file only", zap.Error(err))
		} else {
			r.client = client
			r.ownsClient = true
		}
	}
	return r
}

func (r *Resolver) Close() error {
	if r.ownsClient && r.client != nil {
		return r.client.Close()
	}
	return nil
}

// ResolveSecret accepts secret://name, secret://name#version or
// secret://projects/p/secrets/name/versions/v. Bare names need a project id
// to reach Secret Manager; without one only the fallback file is consulted.
func (r *Resolver) ResolveSecret(ctx context.Context, ref string) (string, error) {
	body, ok := strings.CutPrefix(strings.TrimSpace(ref), "secret://")
	body = strings.TrimSpace(body)
	if !ok || body == "" {
		return "", fmt.Errorf("secrets: invalid reference %q", ref)
	}
	key := "secret://" + body

	r.mu.RLock()
	value, cached := r.cache[key]
	r.mu.RUnlock()
	if cached {
		r.count(ctx, "cache")
		return value, nil
	}

	if name := r.resourceName(body); r.client != nil && name != "" {
		resp, err := r.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
		switch {
		case err == nil:
			value := string(resp.GetPayload().GetData())
			r.store(key, value)
			r.count(ctx, "remote")
			return value, nil
		case !fallbackEligible(err):
			return "", fmt.Errorf("secrets: access %s: %w", name, err)
		default:
			r.logger.Debug("secrets: falling back to local file", zap.String("secret", name), zap.Error(err))
		}
	}

	if value, ok := r.lookupFallback(key); ok {
		r.store(key, value)
		r.count(ctx, "fallback")
		return value, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, key)
}

func (r *Resolver) resourceName(body string) string {
	if strings.HasPrefix(body, "projects/") {
		if !strings.Contains(body, "/versions/") {
			body += "/versions/latest"
		}
		return body
	}
	if r.projectID == "" {
		return ""
	}
	name, version, found := strings.Cut(body, "#")
	if !found || version == "" {
		version = "latest"
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/%s", r.projectID, name, version)
}

func (r *Resolver) store(name, value string) {
	r.mu.Lock()
	r.cache[name] = value
	r.mu.Unlock()
}

func (r *Resolver) count(ctx context.Context, source string) {
	if r.lookups == nil {
		return
	}
	r.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

func (r *Resolver) lookupFallback(ref string) (string, bool) {
	r.fallbackOnce.Do(func() {
		r.fallback = map[string]string{}
		if r.fallbackPath == "" {
			return
		}
		file, err := os.Open(r.fallbackPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				r.logger.Warn("secrets: cannot open fallback file", zap.String("path", r.fallbackPath), zap.Error(err))
			}
			return
		}
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			r.fallback[normalizeKey(key)] = strings.TrimSpace(value)
		}
	})
	value, ok := r.fallback[normalizeKey(ref)]
	return value, ok
}

func normalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(key, "secret://") {
		key = "secret://" + key
	}
	return key
}

func fallbackEligible(err error) bool {
	switch status.Code(err) {
	case codes.NotFound, codes.PermissionDenied, codes.Unauthenticated, codes.Unavailable:
		return true
	default:
		return false
	}
}
