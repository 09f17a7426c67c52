// SPDX-License-Identifier: MIT

// Package store persists batch outcomes in a badger key-value database,
// JSON-encoded under "<run>/<session>/<region>/<pseudo_id>".
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/katalvlaran/bwmdecode/batch"
)

var (
	// ErrNotFound is returned by Get for an unknown key.
	ErrNotFound = errors.New("store: outcome not found")

	// ErrNoPath is returned by Open for a persistent store without a path.
	ErrNoPath = errors.New("store: path is required for a persistent store")

	// ErrBadKey is returned by Put for an outcome without run, session or
	// region.
	ErrBadKey = errors.New("store: outcome key needs run id, session and region")
)

// Config configures Open.
type Config struct {
	// Path is the database directory (created if missing).
	Path string

	// InMemory keeps everything in memory; Path is ignored.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// Logger receives badger's internal logs; nil silences them.
	Logger *slog.Logger
}

// DefaultConfig returns a persistent, synchronously written store at path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns a throwaway in-memory store.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger routes badger's printf-style logs into slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store is a badger-backed outcome store. It implements batch.Sink and is
// safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store described by cfg.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, ErrNoPath
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("store: create directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Put writes o under o.Key(), replacing any previous value.
func (s *Store) Put(_ context.Context, o batch.Outcome) error {
	if o.RunID == "" || o.Session == "" || o.Region == "" {
		return ErrBadKey
	}
	val, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", o.Key(), err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(o.Key()), val)
	})
}

// Get reads the outcome stored under key.
func (s *Store) Get(key string) (batch.Outcome, error) {
	var o batch.Outcome
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &o)
		})
	})
	return o, err
}

// Scan calls fn for every outcome whose key starts with prefix, in key order.
// Returning an error from fn stops the scan and returns that error.
func (s *Store) Scan(ctx context.Context, prefix string, fn func(key string, o batch.Outcome) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var o batch.Outcome
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &o)
			}); err != nil {
				return fmt.Errorf("store: decode %s: %w", item.Key(), err)
			}
			if err := fn(string(item.KeyCopy(nil)), o); err != nil {
				return err
			}
		}
		return nil
	})
}

// Run returns every outcome of run id, in key order.
func (s *Store) Run(ctx context.Context, id string) ([]batch.Outcome, error) {
	var out []batch.Outcome
	err := s.Scan(ctx, strings.TrimSuffix(id, "/")+"/", func(_ string, o batch.Outcome) error {
		out = append(out, o)
		return nil
	})
	return out, err
}

// Runs returns the distinct run ids in the store, sorted.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := string(it.Item().Key())
			run, _, _ := strings.Cut(key, "/")
			if len(ids) == 0 || ids[len(ids)-1] != run {
				ids = append(ids, run)
			}
		}
		return nil
	})
	return ids, err
}
