package database

import (
	"context"
	"database/sql"
	"github.com/mdobak/go-xerrors"
)

// schemaStatements is the authoritative DDL. Statements are idempotent and
// ordered so referenced tables exist before the tables referencing them.
//
// Uniqueness and cascade rules live here, not in application code: blog
// names, blog slugs and the (name, slug_name) pair are unique; author emails
// are unique; a profile belongs to exactly one author and disappears with it;
// entries are keyed by slug, jointly unique on (blog_id, headline,
// slug_headline) and vanish with their blog; entry_authors rows vanish with
// either side.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS blogs (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE,
		slug_name VARCHAR(50) NOT NULL UNIQUE,
		headline VARCHAR(255),
		description TEXT,
		UNIQUE (name, slug_name)
	)`,

	`CREATE TABLE IF NOT EXISTS authors (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		email VARCHAR(254) NOT NULL UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS author_profiles (
		id BIGSERIAL PRIMARY KEY,
		author_id BIGINT NOT NULL UNIQUE REFERENCES authors (id) ON DELETE CASCADE,
		bio TEXT,
		avatar TEXT NOT NULL DEFAULT 'avatars/unnamed.png',
		phone_number VARCHAR(12) UNIQUE,
		city VARCHAR(120)
	)`,

	`CREATE TABLE IF NOT EXISTS entries (
		slug_headline VARCHAR(255) PRIMARY KEY,
		blog_id BIGINT NOT NULL REFERENCES blogs (id) ON DELETE CASCADE,
		headline VARCHAR(255) NOT NULL,
		summary TEXT NOT NULL,
		body_text TEXT NOT NULL,
		pub_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		mod_date DATE NOT NULL DEFAULT CURRENT_DATE,
		number_of_comments INTEGER NOT NULL DEFAULT 0,
		number_of_pingbacks INTEGER NOT NULL DEFAULT 0,
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		UNIQUE (blog_id, headline, slug_headline)
	)`,

	`CREATE TABLE IF NOT EXISTS entry_authors (
		entry_slug VARCHAR(255) NOT NULL REFERENCES entries (slug_headline) ON DELETE CASCADE,
		author_id BIGINT NOT NULL REFERENCES authors (id) ON DELETE CASCADE,
		PRIMARY KEY (entry_slug, author_id)
	)`,
}

// ApplySchema creates the blogs, authors, author_profiles, entries and
// entry_authors tables if they do not exist yet.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	for _, statement := range schemaStatements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return xerrors.Newf("applying schema: %w", err)
		}
	}

	return nil
}
