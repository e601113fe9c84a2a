package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Tries multiple formats and returns the zero time if parsing fails.
func parseTimestamp(ns sql.NullString) time.Time {
	if !ns.Valid || ns.String == "" {
		return time.Time{}
	}

	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05.999999",
	} {
		if t, err := time.Parse(layout, ns.String); err == nil {
			return t
		}
	}

	return time.Time{}
}

// isUniqueViolation reports whether the driver error is a UNIQUE
// constraint failure. go-sqlite3 exposes this only via the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateProfile inserts a profile and fills in its ID.
// Returns ErrDuplicate when the name is already taken.
func (db *DB) CreateProfile(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (name, birth_date, birth_time, timezone, longitude, latitude, true_solar)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.ExecContext(ctx, query,
		p.Name, p.BirthDate, p.BirthTime, p.Timezone,
		p.Longitude, p.Latitude, p.TrueSolar,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert profile: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("profile insert id: %w", err)
	}
	p.ID = id

	return nil
}

// GetProfile retrieves one profile by ID.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) GetProfile(ctx context.Context, id int64) (*Profile, error) {
	query := `
		SELECT id, name, birth_date, birth_time, timezone,
		       longitude, latitude, true_solar, created_at, updated_at
		FROM profiles
		WHERE id = ?
	`

	p, err := scanProfile(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query profile: %w", err)
	}

	return p, nil
}

// ListProfiles retrieves profiles ordered by creation time.
func (db *DB) ListProfiles(ctx context.Context, limit, offset int) ([]Profile, error) {
	query := `
		SELECT id, name, birth_date, birth_time, timezone,
		       longitude, latitude, true_solar, created_at, updated_at
		FROM profiles
		ORDER BY created_at, id
		LIMIT ? OFFSET ?
	`

	rows, err := db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

// DeleteProfile removes a profile by ID.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) DeleteProfile(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete profile rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (*Profile, error) {
	var p Profile
	var birthTime sql.NullString
	var createdAt, updatedAt sql.NullString

	err := s.Scan(
		&p.ID, &p.Name, &p.BirthDate, &birthTime, &p.Timezone,
		&p.Longitude, &p.Latitude, &p.TrueSolar, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if birthTime.Valid && birthTime.String != "" {
		p.BirthTime = &birthTime.String
	}
	p.CreatedAt = parseTimestamp(createdAt)
	p.UpdatedAt = parseTimestamp(updatedAt)

	return &p, nil
}
