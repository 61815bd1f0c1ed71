package db

import (
	"database/sql"
)

func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS profiles (
    id         SERIAL PRIMARY KEY,
    username   TEXT NOT NULL UNIQUE,
    bio        TEXT,
    avatar_url TEXT,
    created_at TIMESTAMPTZ DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS links (
    id                  SERIAL PRIMARY KEY,
    profile_id          INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    title               TEXT NOT NULL,
    url                 TEXT NOT NULL,
    icon                TEXT NOT NULL DEFAULT '',
    position            INTEGER NOT NULL DEFAULT 0,
    preview_image_url   TEXT,
    preview_description TEXT,
    created_at          TIMESTAMPTZ DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		// Profile pages render all links ordered by position.
		`CREATE INDEX IF NOT EXISTS idx_links_profile_position ON links(profile_id, position)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}
