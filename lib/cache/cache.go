// Package cache is a durable namespaced key to id store backed by
// sqlite. Namespaces keep different kinds of resolved identifiers from
// colliding on the same key string. Entries never expire on their own;
// readers may pass a max age to treat stale entries as misses.
package cache

import (
	"context"
	"database/sql"
	"time"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sql.DB
}

// Open creates or opens the cache database at path. ":memory:" gives a
// throwaway in-memory store for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored value for (namespace, key), reporting a miss
// through the second return value.
func (s *Store) Get(ctx context.Context, namespace, key string) (int64, bool, error) {
	return s.GetWithMaxAge(ctx, namespace, key, 0)
}

// GetWithMaxAge behaves like Get, except entries stamped longer than
// maxAge ago count as misses and are evicted on the way out. A maxAge
// of zero disables the check.
func (s *Store) GetWithMaxAge(ctx context.Context, namespace, key string, maxAge time.Duration) (int64, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		"SELECT value, timestamp FROM cache WHERE namespace = ? AND key = ?",
		namespace, key,
	)

	var value, stamp int64
	err := row.Scan(&value, &stamp)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	if maxAge > 0 && time.Now().Unix()-stamp > int64(maxAge.Seconds()) {
		err := s.Clear(ctx, namespace, key)
		if err != nil {
			return 0, false, err
		}
		return 0, false, nil
	}

	return value, true, nil
}

// Save upserts (namespace, key) -> value, stamping the current time.
func (s *Store) Save(ctx context.Context, namespace, key string, value int64) error {
	_, err := s.db.ExecContext(
		ctx,
		"INSERT OR REPLACE INTO cache (namespace, key, value, timestamp) VALUES (?, ?, ?, ?)",
		namespace, key, value, time.Now().Unix(),
	)
	return err
}

// Clear deletes a single entry, a whole namespace when key is empty,
// or the entire store when both namespace and key are empty.
func (s *Store) Clear(ctx context.Context, namespace, key string) error {
	var err error
	switch {
	case namespace != "" && key != "":
		_, err = s.db.ExecContext(ctx, "DELETE FROM cache WHERE namespace = ? AND key = ?", namespace, key)
	case namespace != "":
		_, err = s.db.ExecContext(ctx, "DELETE FROM cache WHERE namespace = ?", namespace)
	default:
		_, err = s.db.ExecContext(ctx, "DELETE FROM cache")
	}
	return err
}
