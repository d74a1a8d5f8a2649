package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/francoispqt/gojay"
	"github.com/go-logr/logr"
	"github.com/google/gops/agent"
	"github.com/pkg/errors"
	"github.com/viant/gmetric"
	"github.com/viant/lifecycle/catalog"
	"github.com/viant/lifecycle/config"
	"github.com/viant/lifecycle/handler"
	"github.com/viant/lifecycle/journal"
	"github.com/viant/lifecycle/shared"
)

const (
	metricURI       = "/v1/api/metric/"
	shutdownTimeout = 10 * time.Second
)

// Service represents lifecycle process: catalogue, endpoint and journal
type Service struct {
	config  *config.Config
	metrics *gmetric.Service
	logger  logr.Logger
	catalog *catalog.Catalog
	journal *journal.Service
}

// Catalog returns service catalog
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Handler returns endpoint handler
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(metricURI, gmetric.NewHandler(metricURI, s.metrics))
	mux.Handle(handler.ConfigURI, handler.NewHandler(s.config))
	mux.Handle(handler.CatalogURI, handler.NewCatalogHandler(func() gojay.MarshalerJSONObject {
		return s.catalog.Snapshot()
	}))
	mux.HandleFunc(handler.StatusURI, handler.StatusOK)
	return mux
}

// Run warms up the catalogue and serves the endpoint until ctx is done
func (s *Service) Run(ctx context.Context) (err error) {
	defer func() {
		if closeErr := s.catalog.Close(); err == nil {
			err = closeErr
		}
	}()
	if s.config.Diagnostics {
		if err := agent.Listen(agent.Options{}); err != nil {
			s.logger.Error(err, "failed to start diagnostics agent")
		} else {
			defer agent.Close()
		}
	}
	if s.journal != nil {
		flushed := make(chan struct{})
		journalCtx, cancel := context.WithCancel(context.Background())
		go func() {
			s.journal.FlushInBackground(journalCtx)
			close(flushed)
		}()
		defer func() {
			cancel()
			<-flushed
			shared.CloseWithErrorHandling(s.journal, &err)
		}()
	}
	if err = s.catalog.WarmUp(ctx); err != nil {
		return errors.Wrapf(err, "failed to warm up")
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(s.config.Endpoint.Port), Handler: s.Handler()}
	served := make(chan error, 1)
	go func() {
		served <- server.ListenAndServe()
	}()
	s.logger.Info("started endpoint", "port", s.config.Endpoint.Port)

	select {
	case err = <-served:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err = server.Shutdown(shutdownCtx)
		cancel()
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	s.logger.Info("stopped endpoint", "port", s.config.Endpoint.Port)
	return err
}

// New creates a service
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	ret := &Service{config: cfg, metrics: gmetric.New(), logger: shared.NewLogger("app")}
	options := []catalog.Option{catalog.WithMetrics(ret.metrics), catalog.WithLogger(ret.logger)}
	var err error
	if cfg.Journal != nil {
		if ret.journal, err = journal.New(ctx, cfg.Journal, ret.logger.WithName("journal")); err != nil {
			return nil, err
		}
		options = append(options, catalog.WithObserver(ret.journal))
	}
	if ret.catalog, err = catalog.New(cfg, options...); err != nil {
		return nil, err
	}
	return ret, nil
}

// RunApp loads config from URL and runs the service until SIGINT or SIGTERM
func RunApp(configURL string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	cfg, err := config.NewConfigFromURL(ctx, configURL)
	if err != nil {
		return err
	}
	srv, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
