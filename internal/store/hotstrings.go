package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/anthropics/kodex/internal/kerr"
)

// allTriggerTypes is used to validate incoming trigger sets.
var allTriggerTypes = map[TriggerType]bool{
	TriggerEnter: true, TriggerTab: true, TriggerSpace: true, TriggerInstant: true,
}

func validateHotstring(h *Hotstring) error {
	if err := validate.Struct(h); err != nil {
		return fmt.Errorf("%w: %v", kerr.ErrValidation, err)
	}
	if len(h.Triggers) == 0 {
		return fmt.Errorf("%w: hotstring %q has no triggers", kerr.ErrValidation, h.Name)
	}
	for t := range h.Triggers {
		if !allTriggerTypes[t] {
			return fmt.Errorf("%w: unknown trigger type %q", kerr.ErrValidation, t)
		}
	}
	if h.Triggers[TriggerInstant] && len(h.Triggers) > 1 {
		return fmt.Errorf("%w: Instant must be the only trigger for %q", kerr.ErrValidation, h.Name)
	}
	return nil
}

// SaveHotstring inserts or updates (by ID, if set) a hotstring and atomically
// replaces its entire trigger set. Returns the hotstring with ID/timestamps
// populated.
func (s *Store) SaveHotstring(h *Hotstring) (*Hotstring, error) {
	if err := validateHotstring(h); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	out := *h

	err := s.withTx(func(tx *sql.Tx) error {
		if h.ID == 0 {
			res, err := tx.Exec(
				`INSERT INTO hotstrings(name, replacement, is_script, bundle_id, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				h.Name, h.Replacement, h.IsScript, h.BundleID, now, now,
			)
			if err != nil {
				return err
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			out.ID = id
		} else {
			_, err := tx.Exec(
				`UPDATE hotstrings SET name=?, replacement=?, is_script=?, bundle_id=?, updated_at=? WHERE id=?`,
				h.Name, h.Replacement, h.IsScript, h.BundleID, now, h.ID,
			)
			if err != nil {
				return err
			}
			out.ID = h.ID
		}

		if _, err := tx.Exec(`DELETE FROM triggers WHERE hotstring_id = ?`, out.ID); err != nil {
			return err
		}
		for t := range h.Triggers {
			if _, err := tx.Exec(`INSERT INTO triggers(hotstring_id, trigger_type) VALUES (?, ?)`, out.ID, string(t)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: saving hotstring %q: %w", h.Name, err)
	}
	return &out, nil
}

// DeleteHotstring removes a hotstring; its trigger rows cascade.
func (s *Store) DeleteHotstring(id int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM hotstrings WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("store: hotstring %d: %w", id, kerr.ErrNotFound)
		}
		return nil
	})
}

const hotstringSelect = `
	SELECT h.id, h.name, h.replacement, h.is_script, h.bundle_id, b.name, h.created_at, h.updated_at
	FROM hotstrings h JOIN bundles b ON b.id = h.bundle_id`

func (s *Store) scanHotstring(row *sql.Row) (*Hotstring, error) {
	var h Hotstring
	var created, updated string
	if err := row.Scan(&h.ID, &h.Name, &h.Replacement, &h.IsScript, &h.BundleID, &h.BundleName, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("store: %w", kerr.ErrNotFound)
		}
		return nil, err
	}
	h.CreatedAt, _ = time.Parse(time.RFC3339, created)
	h.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	triggers, err := s.getTriggers(h.ID)
	if err != nil {
		return nil, err
	}
	h.Triggers = triggers
	return &h, nil
}

func (s *Store) getTriggers(hotstringID int64) (map[TriggerType]bool, error) {
	rows, err := s.db.Query(`SELECT trigger_type FROM triggers WHERE hotstring_id = ?`, hotstringID)
	if err != nil {
		return nil, fmt.Errorf("store: loading triggers for %d: %w", hotstringID, err)
	}
	defer rows.Close()

	out := make(map[TriggerType]bool)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out[TriggerType(t)] = true
	}
	return out, rows.Err()
}

// GetHotstring looks up by surrogate id.
func (s *Store) GetHotstring(id int64) (*Hotstring, error) {
	row := s.db.QueryRow(hotstringSelect+` WHERE h.id = ?`, id)
	h, err := s.scanHotstring(row)
	if err != nil {
		return nil, fmt.Errorf("store: getting hotstring %d: %w", id, err)
	}
	return h, nil
}

// GetHotstringByName looks up by the (name, bundle) business key.
func (s *Store) GetHotstringByName(name string, bundleID int64) (*Hotstring, error) {
	row := s.db.QueryRow(hotstringSelect+` WHERE h.name = ? AND h.bundle_id = ?`, name, bundleID)
	h, err := s.scanHotstring(row)
	if err != nil {
		return nil, fmt.Errorf("store: getting hotstring %q in bundle %d: %w", name, bundleID, err)
	}
	return h, nil
}

// ListHotstrings returns hotstrings optionally filtered by bundle id
// (bundleID == 0 means all bundles) and optionally restricted to hotstrings
// whose bundle is enabled.
func (s *Store) ListHotstrings(bundleID int64, enabledOnly bool) ([]Hotstring, error) {
	query := hotstringSelect + ` WHERE 1=1`
	var args []interface{}
	if bundleID != 0 {
		query += ` AND h.bundle_id = ?`
		args = append(args, bundleID)
	}
	if enabledOnly {
		query += ` AND b.enabled = 1`
	}
	query += ` ORDER BY h.name`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: listing hotstrings: %w", err)
	}
	defer rows.Close()

	var out []Hotstring
	var ids []int64
	for rows.Next() {
		var h Hotstring
		var created, updated string
		if err := rows.Scan(&h.ID, &h.Name, &h.Replacement, &h.IsScript, &h.BundleID, &h.BundleName, &created, &updated); err != nil {
			return nil, fmt.Errorf("store: scanning hotstring row: %w", err)
		}
		h.CreatedAt, _ = time.Parse(time.RFC3339, created)
		h.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		out = append(out, h)
		ids = append(ids, h.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		triggers, err := s.getTriggers(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Triggers = triggers
	}
	return out, nil
}
