package store

import (
	"database/sql"
	"fmt"

	"github.com/anthropics/kodex/internal/kerr"
)

// CreateBundle is idempotent on name: re-creating an existing bundle returns
// its existing id rather than erroring.
func (s *Store) CreateBundle(name string) (*Bundle, error) {
	if err := validate.Var(name, "required,min=1"); err != nil {
		return nil, fmt.Errorf("store: %w: bundle name: %v", kerr.ErrValidation, err)
	}
	var b Bundle
	err := s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO bundles(name, enabled) VALUES (?, 1)`, name); err != nil {
			return err
		}
		return tx.QueryRow(`SELECT id, name, enabled FROM bundles WHERE name = ?`, name).
			Scan(&b.ID, &b.Name, &b.Enabled)
	})
	if err != nil {
		return nil, fmt.Errorf("store: creating bundle %q: %w", name, err)
	}
	return &b, nil
}

// GetBundleByName returns kerr.ErrNotFound if no such bundle exists.
func (s *Store) GetBundleByName(name string) (*Bundle, error) {
	var b Bundle
	err := s.db.QueryRow(`SELECT id, name, enabled FROM bundles WHERE name = ?`, name).
		Scan(&b.ID, &b.Name, &b.Enabled)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: bundle %q: %w", name, kerr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: getting bundle %q: %w", name, err)
	}
	return &b, nil
}

// ListBundles returns all bundles ordered by name.
func (s *Store) ListBundles() ([]Bundle, error) {
	rows, err := s.db.Query(`SELECT id, name, enabled FROM bundles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: listing bundles: %w", err)
	}
	defer rows.Close()

	var out []Bundle
	for rows.Next() {
		var b Bundle
		if err := rows.Scan(&b.ID, &b.Name, &b.Enabled); err != nil {
			return nil, fmt.Errorf("store: scanning bundle row: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// RenameBundle refuses to rename the Default bundle.
func (s *Store) RenameBundle(id int64, newName string) error {
	return s.withTx(func(tx *sql.Tx) error {
		var name string
		if err := tx.QueryRow(`SELECT name FROM bundles WHERE id = ?`, id).Scan(&name); err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("store: bundle %d: %w", id, kerr.ErrNotFound)
			}
			return err
		}
		if name == DefaultBundleName {
			return fmt.Errorf("store: %w: the Default bundle cannot be renamed", kerr.ErrValidation)
		}
		_, err := tx.Exec(`UPDATE bundles SET name = ? WHERE id = ?`, newName, id)
		return err
	})
}

// SetBundleEnabled toggles whether a bundle's hotstrings are matched.
func (s *Store) SetBundleEnabled(id int64, enabled bool) error {
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE bundles SET enabled = ? WHERE id = ?`, enabled, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("store: bundle %d: %w", id, kerr.ErrNotFound)
		}
		return nil
	})
}

// DeleteBundle cascades to its hotstrings and their triggers. Refuses to
// delete the Default bundle.
func (s *Store) DeleteBundle(id int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		var name string
		if err := tx.QueryRow(`SELECT name FROM bundles WHERE id = ?`, id).Scan(&name); err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("store: bundle %d: %w", id, kerr.ErrNotFound)
			}
			return err
		}
		if name == DefaultBundleName {
			return fmt.Errorf("store: %w: the Default bundle cannot be deleted", kerr.ErrValidation)
		}
		_, err := tx.Exec(`DELETE FROM bundles WHERE id = ?`, id)
		return err
	})
}
