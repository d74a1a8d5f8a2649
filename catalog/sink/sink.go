package sink

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/google/uuid"
	"github.com/viant/lifecycle/config"
	"github.com/viant/lifecycle/factory"
	"github.com/viant/lifecycle/key"
)

const Kind = "sink"

var (
	Stdout = key.Named(Kind, config.StdoutSink)
	File   = key.Named(Kind, config.FileSink)
)

// Sink represents a log destination, every line is tagged with the sink instance id
type Sink interface {
	ID() string
	Log(message string) error
	Close() error
}

type writerSink struct {
	id     string
	logger logr.Logger
}

func (s *writerSink) ID() string { return s.id }

func (s *writerSink) Log(message string) error {
	s.logger.Info(message)
	return nil
}

func (s *writerSink) Close() error { return nil }

// NewWriter creates a sink writing to writer
func NewWriter(writer io.Writer) Sink {
	id := uuid.New().String()
	return &writerSink{id: id, logger: stdr.New(log.New(writer, "["+id+":LOG] ", 0))}
}

// Register registers built-in sinks, the stdout sink writes to writer when provided
func Register(registry *factory.Registry[Sink], cfg *config.Sink, writer io.Writer) error {
	if writer == nil {
		writer = os.Stdout
	}
	if err := registry.Register(Stdout, func(ctx context.Context, args ...interface{}) (Sink, error) {
		return NewWriter(writer), nil
	}, factory.WithDoc("standard output")); err != nil {
		return err
	}
	return registry.Register(File, func(ctx context.Context, args ...interface{}) (Sink, error) {
		return NewFile(cfg)
	}, factory.WithDoc("JSON lines file stream"))
}
