package config

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/viant/scy"
)

type Connection struct {
	Driver        string `yaml:"Driver"`
	Dsn           string `yaml:"Dsn"`
	MaxOpenConns  int
	MaxIdleConns  int
	MaxIdleTimeMs int
	MaxLifetimeMs int
	Secret        *scy.Resource
}

// OpenDB opens database, the Dsn is expanded with the secret when configured
func (c *Connection) OpenDB(ctx context.Context) (*sql.DB, error) {
	dsn := c.Dsn
	if c.Secret != nil {
		secrets := scy.New()
		secret, err := secrets.Load(ctx, c.Secret)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load secret for %v", c.Driver)
		}
		dsn = secret.Expand(dsn)
	}
	db, err := sql.Open(c.Driver, dsn)
	if err != nil {
		return nil, err
	}
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxIdleTimeMs > 0 {
		db.SetConnMaxIdleTime(time.Duration(c.MaxIdleTimeMs) * time.Millisecond)
	}
	if c.MaxLifetimeMs > 0 {
		db.SetConnMaxLifetime(time.Duration(c.MaxLifetimeMs) * time.Millisecond)
	}
	return db, nil
}
