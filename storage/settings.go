package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// GetSetting returns the stored value for a key, or ErrNotFound when the key
// has never been written. Callers own the meaning of an absent key.
func (s *Store) GetSetting(key string) (string, error) {
	if key == "" {
		return "", errors.New("key is required")
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", storageErr(fmt.Sprintf("get setting %q", key), err)
	}

	return value, nil
}

// SetSetting writes or overwrites one key/value pair.
func (s *Store) SetSetting(key, value string) error {
	if key == "" {
		return errors.New("key is required")
	}

	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		key,
		value,
		NowISO(),
	)
	if err != nil {
		return storageErr(fmt.Sprintf("set setting %q", key), err)
	}

	return nil
}
