// Package store implements the §4.C durable store: bundles, hotstrings,
// triggers, config, and stats, transactional writes, and a polling
// hot-reload hook. Grounded in the teacher's internal/core/db.go (WAL
// pragmas, watchConfig ticker, OnChange subscriber list) and
// internal/session/manager.go (CRUD/upsert/scan idiom), with the schema
// itself taken from the upstream Python database.py.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

var validate = validator.New()

// Store is the sole writer of the SQLite-backed persistent state. All
// mutations run inside a transaction with rollback on failure; reads may run
// outside one. Concurrent readers are permitted.
type Store struct {
	db   *sql.DB
	path string
	log  *zap.SugaredLogger

	mu         sync.Mutex // serializes write transactions, mirrors teacher's Engine.mu
	watchers   []func(event string)
	generation int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Open creates the database file if missing, applies the schema, seeds
// defaults on first open, and starts the generation-polling hot-reload loop.
func Open(path string, log *zap.SugaredLogger) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc sqlite + WAL: single writer connection, matches teacher

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: applying %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: applying schema: %w", err)
	}

	s := &Store{db: db, path: path, log: log}

	if err := s.seedDefaults(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: seeding defaults: %w", err)
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.generation, _ = s.readGeneration()
	s.wg.Add(1)
	go s.watchGeneration()

	return s, nil
}

func (s *Store) seedDefaults() error {
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO bundles(name, enabled) VALUES (?, 1)`, DefaultBundleName); err != nil {
		return err
	}
	for k, v := range defaultConfig {
		if _, err := s.db.Exec(`INSERT OR IGNORE INTO config(key, value) VALUES (?, ?)`, k, v); err != nil {
			return err
		}
	}
	for _, k := range defaultStats {
		if _, err := s.db.Exec(`INSERT OR IGNORE INTO stats(key, value) VALUES (?, 0)`, k); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// OnChange registers a callback invoked (on the poll goroutine) whenever the
// generation counter advances, i.e. a hotstring/bundle/trigger mutation was
// committed by any writer of this database file.
func (s *Store) OnChange(fn func(event string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

func (s *Store) notifyWatchers(event string) {
	s.mu.Lock()
	watchers := append([]func(string){}, s.watchers...)
	s.mu.Unlock()
	for _, w := range watchers {
		w(event)
	}
}

func (s *Store) readGeneration() (int64, error) {
	var v int64
	err := s.db.QueryRow(`SELECT value FROM generation WHERE id = 1`).Scan(&v)
	return v, err
}

// watchGeneration polls the generation counter once a second, mirroring the
// teacher's watchConfig ticker loop.
func (s *Store) watchGeneration() {
	defer s.wg.Done()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			cur, err := s.readGeneration()
			if err != nil {
				if s.log != nil {
					s.log.Warnw("generation poll failed", "error", err)
				}
				continue
			}
			if cur != s.generation {
				s.generation = cur
				s.notifyWatchers("hotstrings_changed")
			}
		}
	}
}

// Close stops the hot-reload loop and closes the database.
func (s *Store) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil && s.log != nil {
		s.log.Warnw("wal checkpoint failed on close", "error", err)
	}
	return s.db.Close()
}

// withTx runs fn inside a transaction, rolling back on error or panic.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: beginning transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && s.log != nil {
			s.log.Warnw("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: committing transaction: %w", err)
	}
	return nil
}
