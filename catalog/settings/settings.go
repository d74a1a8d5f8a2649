package settings

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/lifecycle/config"
	"github.com/viant/lifecycle/key"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Key identifies the shared application settings
var Key = key.Named("settings", "app")

// Settings represents process wide application settings
type Settings struct {
	fs     afs.Service
	schema *gojsonschema.Schema
	mux    sync.RWMutex
	values map[string]interface{}
}

// Load merges values into settings, the merged result has to satisfy the schema
func (s *Settings) Load(values map[string]interface{}) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	merged := make(map[string]interface{}, len(s.values)+len(values))
	for k, v := range s.values {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = v
	}
	if err := s.validate(merged); err != nil {
		return err
	}
	s.values = merged
	return nil
}

// LoadURL merges YAML or JSON document from URL
func (s *Settings) LoadURL(ctx context.Context, URL string) error {
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return errors.Wrapf(err, "failed to download settings: %v", URL)
	}
	values := map[string]interface{}{}
	if err = yaml.Unmarshal(data, &values); err != nil {
		return errors.Wrapf(err, "failed to decode settings: %v", URL)
	}
	return s.Load(values)
}

func (s *Settings) validate(values map[string]interface{}) error {
	if s.schema == nil {
		return nil
	}
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(values))
	if err != nil {
		return errors.Wrapf(err, "failed to validate settings")
	}
	if result.Valid() {
		return nil
	}
	var messages []string
	for _, item := range result.Errors() {
		messages = append(messages, item.String())
	}
	return errors.Errorf("invalid settings: %v", strings.Join(messages, "; "))
}

// Get returns a setting value
func (s *Settings) Get(name string) (interface{}, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	value, ok := s.values[name]
	return value, ok
}

// All returns a copy of all settings
func (s *Settings) All() map[string]interface{} {
	s.mux.RLock()
	defer s.mux.RUnlock()
	result := make(map[string]interface{}, len(s.values))
	for k, v := range s.values {
		result[k] = v
	}
	return result
}

// New creates settings, loading the schema and the initial document when configured
func New(ctx context.Context, cfg *config.Settings) (*Settings, error) {
	ret := &Settings{fs: afs.New(), values: map[string]interface{}{}}
	if cfg == nil {
		return ret, nil
	}
	if cfg.SchemaURL != "" {
		data, err := ret.fs.DownloadWithURL(ctx, cfg.SchemaURL)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to download settings schema: %v", cfg.SchemaURL)
		}
		if ret.schema, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data)); err != nil {
			return nil, errors.Wrapf(err, "invalid settings schema: %v", cfg.SchemaURL)
		}
	}
	if cfg.URL != "" {
		if err := ret.LoadURL(ctx, cfg.URL); err != nil {
			return nil, err
		}
	}
	return ret, nil
}
