package config

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/lifecycle/key"
	"github.com/viant/lifecycle/shared"
	"github.com/viant/toolbox"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort              = 8088
	defaultCacheExpiryMs     = 5 * 60 * 1000
	defaultCacheCleanupMs    = 10 * 60 * 1000
	defaultPushTimeoutMs     = 5000
	defaultJournalFlushMs    = 1000
	defaultJournalTable      = "LIFECYCLE_JOURNAL"
	StdoutSink               = "stdout"
	FileSink                 = "file"
	defaultFileSinkFlushMode = 1
)

type (
	Config struct {
		Registry    Registry
		Singleton   Singleton
		Endpoint    *Endpoint
		WarmUp      []string
		Sink        *Sink
		Settings    *Settings
		Cache       *Cache
		Push        *Push
		Journal     *Journal
		Diagnostics bool
	}

	Registry struct {
		AllowReplace bool
		CaseFold     bool
		Seal         bool
	}

	Singleton struct {
		ShardCount int
	}

	Endpoint struct {
		Port int
	}

	Sink struct {
		Kind           string
		URL            string
		FlushMod       int
		MaxMessageSize int
		Concurrency    int
	}

	Settings struct {
		URL       string
		SchemaURL string
	}

	Cache struct {
		ExpiryMs  int
		CleanupMs int
	}

	Push struct {
		URL               string
		TimeoutMs         int
		CompressionSizeKb int
	}

	Journal struct {
		Connection *Connection
		Table      string
		FlushMs    int
	}
)

// Expiry returns default cache item expiry
func (c *Cache) Expiry() time.Duration {
	return time.Millisecond * time.Duration(c.ExpiryMs)
}

// Cleanup returns cache cleanup interval
func (c *Cache) Cleanup() time.Duration {
	return time.Millisecond * time.Duration(c.CleanupMs)
}

// Timeout returns push request timeout
func (p *Push) Timeout() time.Duration {
	return time.Millisecond * time.Duration(p.TimeoutMs)
}

// CompressionSize returns payload size above which push request is gzipped
func (p *Push) CompressionSize() int {
	return 1024 * p.CompressionSizeKb
}

// FlushInterval returns journal flush interval
func (j *Journal) FlushInterval() time.Duration {
	return time.Millisecond * time.Duration(j.FlushMs)
}

// WarmUpKeys returns parsed warm-up selectors
func (c *Config) WarmUpKeys() ([]key.Key, error) {
	var result = make([]key.Key, 0, len(c.WarmUp))
	for _, encoded := range c.WarmUp {
		k, err := key.Parse(encoded)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid WarmUp entry")
		}
		result = append(result, k)
	}
	return result, nil
}

// Init sets defaults
func (c *Config) Init() {
	if c.Singleton.ShardCount <= 0 {
		c.Singleton.ShardCount = shared.DefaultShardCount
	}
	if c.Endpoint == nil {
		c.Endpoint = &Endpoint{}
	}
	if c.Endpoint.Port == 0 {
		c.Endpoint.Port = defaultPort
	}
	if c.Sink == nil {
		c.Sink = &Sink{}
	}
	if c.Sink.Kind == "" {
		c.Sink.Kind = StdoutSink
	}
	if c.Sink.FlushMod <= 0 {
		c.Sink.FlushMod = defaultFileSinkFlushMode
	}
	if c.Sink.MaxMessageSize < shared.DefaultMaxMessageSize {
		c.Sink.MaxMessageSize = shared.DefaultMaxMessageSize
	}
	if c.Sink.Concurrency <= 0 {
		c.Sink.Concurrency = shared.DefaultConcurrency
	}
	if c.Settings == nil {
		c.Settings = &Settings{}
	}
	if c.Cache == nil {
		c.Cache = &Cache{}
	}
	if c.Cache.ExpiryMs == 0 {
		c.Cache.ExpiryMs = defaultCacheExpiryMs
	}
	if c.Cache.CleanupMs == 0 {
		c.Cache.CleanupMs = defaultCacheCleanupMs
	}
	if c.Push == nil {
		c.Push = &Push{}
	}
	if c.Push.TimeoutMs == 0 {
		c.Push.TimeoutMs = defaultPushTimeoutMs
	}
	if c.Journal != nil {
		if c.Journal.Table == "" {
			c.Journal.Table = defaultJournalTable
		}
		if c.Journal.FlushMs == 0 {
			c.Journal.FlushMs = defaultJournalFlushMs
		}
	}
}

// Validate checks if config is valid
func (c *Config) Validate() error {
	if c.Endpoint == nil || c.Endpoint.Port <= 0 {
		return errors.Errorf("Endpoint.Port was empty")
	}
	switch c.Sink.Kind {
	case StdoutSink:
	case FileSink:
		if c.Sink.URL == "" {
			return errors.Errorf("Sink.URL was empty")
		}
	default:
		return errors.Errorf("unsupported Sink.Kind: %v", c.Sink.Kind)
	}
	if c.Settings.SchemaURL != "" && c.Settings.URL == "" {
		return errors.Errorf("Settings.URL was empty")
	}
	if c.Cache.ExpiryMs < 0 || c.Cache.CleanupMs < 0 {
		return errors.Errorf("Cache ExpiryMs and CleanupMs can not be negative")
	}
	if c.Push.CompressionSizeKb < 0 {
		return errors.Errorf("Push.CompressionSizeKb was negative")
	}
	if c.Journal != nil {
		if c.Journal.Connection == nil {
			return errors.Errorf("Journal.Connection was empty")
		}
		if c.Journal.Connection.Driver == "" {
			return errors.Errorf("Journal.Connection.Driver was empty")
		}
		if c.Journal.Connection.Dsn == "" {
			return errors.Errorf("Journal.Connection.Dsn was empty")
		}
	}
	if _, err := c.WarmUpKeys(); err != nil {
		return err
	}
	return nil
}

// NewConfigFromURL loads config from URL
func NewConfigFromURL(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	reader, err := fs.OpenURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get config: %v", URL)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config: %v", URL)
	}
	aMap := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &aMap); err != nil {
		return nil, errors.Wrapf(err, "failed to decode config: %v", URL)
	}
	cfg := &Config{}
	if err = toolbox.DefaultConverter.AssignConverted(cfg, aMap); err != nil {
		return nil, errors.Wrapf(err, "failed to convert config: %v", URL)
	}
	cfg.Init()
	return cfg, cfg.Validate()
}
