package sink

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/lifecycle/config"
	tconfig "github.com/viant/tapper/config"
	tlog "github.com/viant/tapper/log"
	"github.com/viant/tapper/msg"
	tjson "github.com/viant/tapper/msg/json"
)

type fileSink struct {
	id     string
	logger *tlog.Logger
	*msg.Provider
	mux    sync.Mutex
	closed bool
}

func (s *fileSink) ID() string { return s.id }

func (s *fileSink) Log(message string) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.closed {
		return errors.Errorf("sink %v was closed", s.id)
	}
	record := s.Provider.NewMessage()
	record.PutString("Instance", s.id)
	record.PutString("Time", time.Now().UTC().Format(time.RFC3339Nano))
	record.PutString("Message", message)
	err := s.logger.Log(record)
	record.Free()
	return err
}

func (s *fileSink) Close() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.logger.Close()
}

// NewFile creates a file sink, messages are written as JSON lines to the configured URL
func NewFile(cfg *config.Sink) (Sink, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.Errorf("sink URL was empty")
	}
	stream := &tconfig.Stream{FlushMod: cfg.FlushMod, URL: cfg.URL}
	logger, err := tlog.New(stream, "", afs.New())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create file sink: %v", cfg.URL)
	}
	return &fileSink{
		id:       uuid.New().String(),
		logger:   logger,
		Provider: msg.NewProvider(cfg.MaxMessageSize, cfg.Concurrency, tjson.New),
	}, nil
}
