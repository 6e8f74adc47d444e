package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/quillboard/quillboard/internal/identity/store"
)

// Store implements store.KV on a single sqlite table. TTL semantics
// live in the queries: expired rows are invisible to Get and count as
// absent for PutIfAbsent, so correctness never depends on a sweep.
type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Serialize writers; modernc's driver multiplexes one connection
	// poorly under concurrent writes otherwise.
	db.SetMaxOpenConns(1)

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get returns the live value for key. An expired row is deleted lazily
// and reported as absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		value     []byte
		expiresAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid && expiresAt.Int64 <= nowMillis() {
		// Conditional delete so a concurrent rewrite is not clobbered.
		_, _ = s.db.ExecContext(ctx,
			`DELETE FROM kv WHERE key = ? AND expires_at IS NOT NULL AND expires_at <= ?`,
			key, nowMillis(),
		)
		return nil, store.ErrNotFound
	}

	return value, nil
}

// Put writes the value, replacing any existing entry.
func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiry(ttl),
	)
	return err
}

// PutIfAbsent writes the value only when no live entry exists. This is
// a single conditional statement, so two concurrent calls for the same
// key resolve to exactly one winner.
func (s *Store) PutIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, expires_at) VALUES (?1, ?2, ?3)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
		 WHERE kv.expires_at IS NOT NULL AND kv.expires_at <= ?4`,
		key, value, expiry(ttl), nowMillis(),
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

// Delete removes the entry; absent keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// DeleteExpired removes all dead rows. Space reclamation only.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM kv WHERE expires_at IS NOT NULL AND expires_at <= ?`, nowMillis(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// expiry maps a ttl to the stored unix-millisecond deadline; 0 or
// negative means the entry never expires.
func expiry(ttl time.Duration) sql.NullInt64 {
	if ttl <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: time.Now().Add(ttl).UnixMilli(), Valid: true}
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
