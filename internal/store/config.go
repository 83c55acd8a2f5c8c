package store

import (
	"database/sql"
	"fmt"
)

// GetConfig returns the stored value for key, or def if the key is absent.
func (s *Store) GetConfig(key, def string) string {
	var v string
	err := s.db.QueryRow(`SELECT value FROM config WHERE key = ?`, key).Scan(&v)
	if err != nil {
		return def
	}
	return v
}

// GetConfigBool interprets the stored value as "1"/"true" => true.
func (s *Store) GetConfigBool(key string, def bool) bool {
	v := s.GetConfig(key, "")
	if v == "" {
		return def
	}
	return v == "1" || v == "true"
}

// SetConfig upserts a config key/value pair.
func (s *Store) SetConfig(key, value string) error {
	return s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO config(key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		)
		return err
	})
}

// GetStat returns a stat's current value, defaulting to 0 if absent.
func (s *Store) GetStat(key string) (int64, error) {
	var v int64
	err := s.db.QueryRow(`SELECT value FROM stats WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: reading stat %q: %w", key, err)
	}
	return v, nil
}

// IncrementStat atomically adds delta to a stat, creating it if absent.
func (s *Store) IncrementStat(key string, delta int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO stats(key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = value + excluded.value`,
			key, delta,
		)
		return err
	})
}
