// Package store is the read side of the chershare schema: one shared sqlite
// connection plus a fixed set of statements prepared at startup and reused for
// the process lifetime.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	// Long busy timeout so transient lock contention from concurrent
	// writers doesn't fail reads.
	busyTimeoutMs = 30000

	openTimeout = 10 * time.Second
)

// Store owns the database connection and every prepared statement. Handlers
// share one instance read-only; Close releases the statements and must be
// called on shutdown.
type Store struct {
	db *sql.DB

	resourceList   map[filterMask]*sql.Stmt
	resourceImages *sql.Stmt
}

// Open connects to the sqlite database at path, verifies connectivity within a
// bounded timeout, ensures the schema exists and prepares all statements.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d", path, busyTimeoutMs)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "could not open the db")
	}

	// All components share a single connection to the backing store.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "could not connect to the db")
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}

	s := &Store{db: db}
	if err := s.prepareStatements(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) prepareStatements() error {
	s.resourceList = make(map[filterMask]*sql.Stmt, filterMaskAll+1)
	for mask := filterMask(0); mask <= filterMaskAll; mask++ {
		stmt, err := s.db.Prepare(buildResourceQuery(mask))
		if err != nil {
			return errors.Wrapf(err, "failed to prepare resource query (mask %b)", mask)
		}
		s.resourceList[mask] = stmt
	}

	var err error
	s.resourceImages, err = s.db.Prepare(
		`SELECT image_url FROM resource_images WHERE resource_name = ? ORDER BY position`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare resource images query")
	}

	return nil
}

// Close finalizes every prepared statement and closes the connection.
func (s *Store) Close() error {
	for _, stmt := range s.resourceList {
		stmt.Close()
	}
	if s.resourceImages != nil {
		s.resourceImages.Close()
	}
	return s.db.Close()
}
