package shared

import (
	"database/sql"

	"github.com/go-logr/logr"
)

// DbStats logs connection pool usage when connections are in use
func DbStats(db *sql.DB, logger logr.Logger) {
	if db == nil {
		return
	}
	dbStats := db.Stats()
	if dbStats.InUse > 0 {
		logger.V(1).Info("db stats", "inUse", dbStats.InUse, "idle", dbStats.Idle, "waitCount", dbStats.WaitCount)
	}
}
