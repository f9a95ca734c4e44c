package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultEnvironment     = "local"
	defaultStoreDriver     = StoreFirestore
	defaultMaxUploadBytes  = 20 << 20
	defaultContactTopic    = "contact-messages"
	defaultLocale          = "cs"
	defaultFallback        = "default"
	defaultContactPerMin   = 5
	defaultContactBurst    = 3
	defaultStandardMaxAge  = 5 * time.Minute
	defaultStandardSMaxAge = time.Hour
	defaultStaleRevalidate = 24 * time.Hour
	defaultPageCacheTTL    = time.Minute
)

// Store drivers accepted by SITE_STORE_DRIVER.
const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

// Config groups runtime configuration by concern.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Firebase  FirebaseConfig
	Firestore FirestoreConfig
	Storage   StorageConfig
	PubSub    PubSubConfig
	Locale    LocaleConfig
	Cache     CacheConfig
	Contact   ContactConfig
	Security  SecurityConfig
}

type ServerConfig struct {
	Port            string
	BaseURL         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	// TrustedProxyHops counts the load balancers that append to
	// X-Forwarded-For. Cloud Run behind its front end uses 1.
	TrustedProxyHops int
}

// StoreConfig selects the persistence backend. The memory driver keeps
// everything in process and is meant for local development.
type StoreConfig struct {
	Driver string
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
	// CredentialsJSON usually arrives as a secret:// reference.
	CredentialsJSON string
}

type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

type StorageConfig struct {
	MediaBucket    string
	PublicBaseURL  string
	MaxUploadBytes int64
}

type PubSubConfig struct {
	ProjectID    string
	ContactTopic string
}

// LocaleConfig lists the site languages. Fallback is "default" (requested,
// then Default, then first available) or "first" (requested, then first).
type LocaleConfig struct {
	Default   string
	Supported []string
	Fallback  string
}

// CacheConfig is the "standard" TTL tier shared by public GET endpoints.
type CacheConfig struct {
	StandardMaxAge       time.Duration
	StandardSMaxAge      time.Duration
	StaleWhileRevalidate time.Duration
	PageTTL              time.Duration
}

type ContactConfig struct {
	RatePerMinute int
	Burst         int
}

type SecurityConfig struct {
	Environment string
}

// SecretResolver resolves secret:// references.
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError lists every missing or invalid field found by Load.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the offending field names.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes a secret reference that could not be resolved.
type SecretError struct {
	Ref string
	Err error
}

func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
}

// WithEnvFile overrides the .env path. An empty path disables the file.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithEnvMap injects values that take precedence over the process environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) { o.secret = resolver }
}

// Load builds the configuration from defaults, the .env file, the process
// environment and the explicit env map, in increasing precedence.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if value, ok := options.envMap[key]; ok {
			return value, true
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		value, ok := dotEnvValues[key]
		return value, ok
	}

	cfg := Config{
		Server: ServerConfig{
			Port:             stringWithDefault(lookup, "SITE_SERVER_PORT", defaultPort),
			BaseURL:          strings.TrimRight(stringWithDefault(lookup, "SITE_SERVER_BASE_URL", ""), "/"),
			ReadTimeout:      durationWithDefault(lookup, "SITE_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:     durationWithDefault(lookup, "SITE_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:      durationWithDefault(lookup, "SITE_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout:  durationWithDefault(lookup, "SITE_SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
			TrustedProxyHops: intWithDefault(lookup, "SITE_SERVER_TRUSTED_PROXY_HOPS", 0),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(stringWithDefault(lookup, "SITE_STORE_DRIVER", defaultStoreDriver)),
		},
		Firebase: FirebaseConfig{
			ProjectID:       stringWithDefault(lookup, "SITE_FIREBASE_PROJECT_ID", ""),
			CredentialsFile: stringWithDefault(lookup, "SITE_FIREBASE_CREDENTIALS_FILE", ""),
			CredentialsJSON: stringWithDefault(lookup, "SITE_FIREBASE_CREDENTIALS_JSON", ""),
		},
		Firestore: FirestoreConfig{
			ProjectID:    stringWithDefault(lookup, "SITE_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost: stringWithDefault(lookup, "SITE_FIRESTORE_EMULATOR_HOST", ""),
		},
		Storage: StorageConfig{
			MediaBucket:    stringWithDefault(lookup, "SITE_STORAGE_MEDIA_BUCKET", ""),
			PublicBaseURL:  strings.TrimRight(stringWithDefault(lookup, "SITE_STORAGE_PUBLIC_BASE_URL", ""), "/"),
			MaxUploadBytes: int64(intWithDefault(lookup, "SITE_STORAGE_MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
		},
		PubSub: PubSubConfig{
			ProjectID:    stringWithDefault(lookup, "SITE_PUBSUB_PROJECT_ID", ""),
			ContactTopic: stringWithDefault(lookup, "SITE_PUBSUB_CONTACT_TOPIC", defaultContactTopic),
		},
		Locale: LocaleConfig{
			Default:   strings.ToLower(stringWithDefault(lookup, "SITE_LOCALE_DEFAULT", defaultLocale)),
			Supported: lowerAll(csvWithDefault(lookup, "SITE_LOCALE_SUPPORTED", []string{"cs", "en", "de"})),
			Fallback:  strings.ToLower(stringWithDefault(lookup, "SITE_LOCALE_FALLBACK", defaultFallback)),
		},
		Cache: CacheConfig{
			StandardMaxAge:       durationWithDefault(lookup, "SITE_CACHE_STANDARD_MAX_AGE", defaultStandardMaxAge),
			StandardSMaxAge:      durationWithDefault(lookup, "SITE_CACHE_STANDARD_S_MAX_AGE", defaultStandardSMaxAge),
			StaleWhileRevalidate: durationWithDefault(lookup, "SITE_CACHE_STALE_WHILE_REVALIDATE", defaultStaleRevalidate),
			PageTTL:              durationWithDefault(lookup, "SITE_CACHE_PAGE_TTL", defaultPageCacheTTL),
		},
		Contact: ContactConfig{
			RatePerMinute: intWithDefault(lookup, "SITE_CONTACT_RATE_PER_MIN", defaultContactPerMin),
			Burst:         intWithDefault(lookup, "SITE_CONTACT_BURST", defaultContactBurst),
		},
		Security: SecurityConfig{
			Environment: strings.ToLower(stringWithDefault(lookup, "SITE_SECURITY_ENVIRONMENT", defaultEnvironment)),
		},
	}

	if cfg.Firestore.ProjectID == "" {
		cfg.Firestore.ProjectID = cfg.Firebase.ProjectID
	}
	if cfg.PubSub.ProjectID == "" {
		cfg.PubSub.ProjectID = cfg.Firestore.ProjectID
	}

	secretFields := []*string{
		&cfg.Firebase.CredentialsJSON,
	}
	for _, field := range secretFields {
		resolved, err := resolveSecret(ctx, *field, options.secret)
		if err != nil {
			return Config{}, err
		}
		*field = resolved
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsSecretReference reports whether value points at Secret Manager.
func IsSecretReference(value string) bool {
	trimmed := strings.TrimSpace(value)
	return strings.HasPrefix(trimmed, "secret://") || strings.HasPrefix(trimmed, "sm://")
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	if !IsSecretReference(value) {
		return value, nil
	}
	ref := normalizeSecretReference(value)
	if resolver == nil {
		return "", &SecretError{Ref: ref, Err: errSecretResolverNotConfigured}
	}
	secret, err := resolver.ResolveSecret(ctx, ref)
	if err != nil {
		return "", &SecretError{Ref: ref, Err: err}
	}
	return secret, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if cfg.Server.TrustedProxyHops < 0 {
		missing = append(missing, "Server.TrustedProxyHops")
	}
	switch cfg.Store.Driver {
	case StoreMemory:
	case StoreFirestore:
		if cfg.Firestore.ProjectID == "" {
			missing = append(missing, "Firestore.ProjectID")
		}
		if cfg.Storage.MediaBucket == "" {
			missing = append(missing, "Storage.MediaBucket")
		}
	default:
		missing = append(missing, "Store.Driver")
	}
	if cfg.Storage.MaxUploadBytes <= 0 {
		missing = append(missing, "Storage.MaxUploadBytes")
	}
	if len(cfg.Locale.Supported) == 0 {
		missing = append(missing, "Locale.Supported")
	} else if !contains(cfg.Locale.Supported, cfg.Locale.Default) {
		missing = append(missing, "Locale.Default")
	}
	if cfg.Locale.Fallback != "default" && cfg.Locale.Fallback != "first" {
		missing = append(missing, "Locale.Fallback")
	}
	if cfg.Contact.RatePerMinute <= 0 {
		missing = append(missing, "Contact.RatePerMinute")
	}
	if cfg.Contact.Burst <= 0 {
		missing = append(missing, "Contact.Burst")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func normalizeSecretReference(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "sm://") {
		return "secret://" + strings.TrimPrefix(trimmed, "sm://")
	}
	return trimmed
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string, fallback []string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return append([]string(nil), fallback...)
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func lowerAll(values []string) []string {
	for i, v := range values {
		values[i] = strings.ToLower(v)
	}
	return values
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
