package journal

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"github.com/viant/lifecycle/config"
	"github.com/viant/lifecycle/domain"
	"github.com/viant/lifecycle/shared"
	"github.com/viant/lifecycle/singleton"
	"github.com/viant/sqlx/io/insert"
	"github.com/viant/sqlx/metadata/info/dialect"
)

// Service records singleton transitions into the journal table
type Service struct {
	config  *config.Journal
	db      *sql.DB
	hostIP  string
	logger  logr.Logger
	mux     sync.Mutex
	pending []*domain.Transition
}

// Observe buffers the transition, it never blocks on the database
func (s *Service) Observe(event *singleton.Event) {
	at := event.At
	if at.IsZero() {
		at = time.Now()
	}
	transition := &domain.Transition{
		Ip:         s.hostIP,
		Kind:       event.Key.Kind,
		Name:       event.Key.Name,
		FromState:  event.From.String(),
		ToState:    event.To.String(),
		InstanceID: event.InstanceID,
		Created:    &at,
	}
	if event.Err != nil {
		transition.Error = event.Err.Error()
	}
	s.mux.Lock()
	s.pending = append(s.pending, transition)
	s.mux.Unlock()
}

// Pending returns number of buffered transitions
func (s *Service) Pending() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.pending)
}

// Flush inserts buffered transitions in one transaction, on failure they are kept for the next flush
func (s *Service) Flush(ctx context.Context) (err error) {
	s.mux.Lock()
	transitions := s.pending
	s.pending = nil
	s.mux.Unlock()
	if len(transitions) == 0 {
		return nil
	}
	defer func() {
		if err != nil {
			s.mux.Lock()
			s.pending = append(transitions, s.pending...)
			s.mux.Unlock()
		}
	}()
	inserter, err := insert.New(ctx, s.db, s.config.Table)
	if err != nil {
		return errors.Wrapf(err, "failed to create insert service: %v", s.config.Table)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, _, err = inserter.Exec(ctx, transitions, tx, dialect.PresetIDStrategyIgnore); err != nil {
		_ = tx.Rollback()
		return errors.Wrapf(err, "failed to insert into journal table: %v", s.config.Table)
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrapf(err, "failed to commit journal table: %v", s.config.Table)
	}
	shared.DbStats(s.db, s.logger)
	return nil
}

// FlushInBackground flushes the journal every configured interval until ctx is done
func (s *Service) FlushInBackground(ctx context.Context) {
	ticker := time.NewTicker(s.config.FlushInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := s.Flush(context.Background()); err != nil {
				s.logger.Error(err, "failed to flush journal on shutdown")
			}
			return
		case <-ticker.C:
			if err := s.Flush(ctx); err != nil {
				s.logger.Error(err, "failed to flush journal", "pending", s.Pending())
			}
		}
	}
}

// Close closes the database
func (s *Service) Close() error {
	return s.db.Close()
}

// New creates a journal service
func New(ctx context.Context, cfg *config.Journal, logger logr.Logger) (*Service, error) {
	if cfg == nil || cfg.Connection == nil {
		return nil, errors.Errorf("journal connection was empty")
	}
	db, err := cfg.Connection.OpenDB(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open journal db")
	}
	hostIP, err := shared.GetLocalIPv4()
	if err != nil {
		hostIP = "127.0.0.1"
	}
	if hostIP == "::1" {
		hostIP = "127.0.0.1"
	}
	return &Service{config: cfg, db: db, hostIP: hostIP, logger: logger}, nil
}
