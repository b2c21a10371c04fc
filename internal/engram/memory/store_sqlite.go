package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// SQLiteStore implements Store on SQLite. Items live in an append-only
// table (one row per item, inserted inside a transaction so concurrent
// readers see whole batches); the profile is one JSON record per user,
// overwritten on every consolidation.
//
// The caller must ensure the tables exist (created by the store package's
// migrations).
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a SQLiteStore backed by the given database
// connection. If logger is nil, the default slog logger is used.
func NewSQLiteStore(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteStore{db: db, logger: logger}
}

// SaveItems appends the items for the user inside one transaction.
func (s *SQLiteStore) SaveItems(ctx context.Context, userID string, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", ErrStoreUnavailable, err)
	}

	for _, item := range items {
		topicsJSON, err := marshalStrings(item.Topics)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("memory sqlite: marshal topics: %w", err)
		}
		entitiesJSON, err := marshalStrings(item.Entities)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("memory sqlite: marshal entities: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO memory_items
				(id, user_id, conversation_id, occurred_at, kind, content, topics, entities, sentiment, importance)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID,
			userID,
			item.ConversationID,
			item.Timestamp.UTC().Format(time.RFC3339Nano),
			string(item.Kind),
			item.Content,
			topicsJSON,
			entitiesJSON,
			string(item.Sentiment),
			item.Importance,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: insert item: %v", ErrStoreUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit items: %v", ErrStoreUnavailable, err)
	}

	s.logger.Debug("memory sqlite: saved items",
		"user_id", userID, "items", len(items))
	return nil
}

// LoadItems returns the user's items in insertion order. Rows that no
// longer parse are logged and skipped; a malformed record is treated as
// absent, never fatal.
func (s *SQLiteStore) LoadItems(ctx context.Context, userID string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, occurred_at, kind, content, topics, entities, sentiment, importance
		FROM memory_items
		WHERE user_id = ?
		ORDER BY rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query items: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			s.logger.Warn("memory sqlite: skip malformed item row",
				"user_id", userID, "err", err)
			continue
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate items: %v", ErrStoreUnavailable, err)
	}

	return items, nil
}

// SaveProfile overwrites the user's profile record.
func (s *SQLiteStore) SaveProfile(ctx context.Context, profile Profile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("memory sqlite: marshal profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO profiles (user_id, payload, updated_at)
		VALUES (?, ?, ?)`,
		profile.UserID,
		payload,
		profile.LastUpdated.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: upsert profile: %v", ErrStoreUnavailable, err)
	}

	s.logger.Debug("memory sqlite: saved profile", "user_id", profile.UserID)
	return nil
}

// LoadProfile returns the user's profile, nil when never consolidated.
// A record that no longer parses is logged and treated as absent.
func (s *SQLiteStore) LoadProfile(ctx context.Context, userID string) (*Profile, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM profiles WHERE user_id = ?`, userID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query profile: %v", ErrStoreUnavailable, err)
	}

	var profile Profile
	if err := json.Unmarshal(payload, &profile); err != nil {
		s.logger.Warn("memory sqlite: malformed profile record, treating as absent",
			"user_id", userID, "err", err)
		return nil, nil
	}
	return &profile, nil
}

// scanItem reads a single row from the memory_items table.
func scanItem(rows *sql.Rows) (Item, error) {
	var (
		item         Item
		occurredAt   string
		kind         string
		topicsJSON   sql.NullString
		entitiesJSON sql.NullString
		sentiment    string
	)

	err := rows.Scan(
		&item.ID,
		&item.ConversationID,
		&occurredAt,
		&kind,
		&item.Content,
		&topicsJSON,
		&entitiesJSON,
		&sentiment,
		&item.Importance,
	)
	if err != nil {
		return Item{}, fmt.Errorf("scan row: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, occurredAt)
	if err != nil {
		return Item{}, fmt.Errorf("parse occurred_at: %w", err)
	}
	item.Timestamp = t
	item.Kind = Kind(kind)
	item.Sentiment = Sentiment(sentiment)

	if topicsJSON.Valid && topicsJSON.String != "" {
		if err := json.Unmarshal([]byte(topicsJSON.String), &item.Topics); err != nil {
			return Item{}, fmt.Errorf("unmarshal topics: %w", err)
		}
	}
	if entitiesJSON.Valid && entitiesJSON.String != "" {
		if err := json.Unmarshal([]byte(entitiesJSON.String), &item.Entities); err != nil {
			return Item{}, fmt.Errorf("unmarshal entities: %w", err)
		}
	}

	return item, nil
}

// marshalStrings JSON-encodes a string slice, mapping nil/empty to NULL.
func marshalStrings(values []string) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)
