package services

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/coursecat/internal/repositories"
	"github.com/desertthunder/coursecat/internal/shared"
)

// Open builds the connector selected by cfg.Remote.Driver.
//
// For the sqlite driver remote.url is the database file, opened and migrated here; close releases it. A placeholder
// url yields an unconfigured connector and no database is opened.
func Open(cfg *shared.Config, client *http.Client, logger *log.Logger) (Connector, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Remote.Driver {
	case shared.DriverPostgREST, "":
		c := NewPostgRESTConnector(cfg.Remote, client)
		if logger != nil {
			c.SetLogger(shared.WithLogger(logger, "component", "postgrest"))
		}
		return c, noop, nil
	case shared.DriverSQLite:
		if !cfg.Remote.Configured() {
			return NewSQLConnector(nil), noop, nil
		}
		db, err := shared.OpenMigrated(cfg.Remote.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open sqlite remote: %w", err)
		}
		return NewSQLConnector(repositories.NewCourseRepository(db)), db.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: unknown remote driver %q", shared.ErrInvalidConfig, cfg.Remote.Driver)
	}
}
