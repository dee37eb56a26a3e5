// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AccelByte/extend-prize-engine/pkg/prize"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SQLCatalog stores prize display metadata in SQLite.
type SQLCatalog struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the catalog database at path and initializes
// the schema. Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLCatalog, error) {
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	conn.SetMaxOpenConns(1)

	c := &SQLCatalog{conn: conn}
	if err := c.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	logrus.Infof("catalog database ready at %s", path)
	return c, nil
}

// Close closes the database connection.
func (c *SQLCatalog) Close() error {
	return c.conn.Close()
}

// Ping implements store.Pinger.
func (c *SQLCatalog) Ping(ctx context.Context) error {
	return c.conn.PingContext(ctx)
}

func (c *SQLCatalog) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS prizes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			value TEXT NOT NULL DEFAULT '0',
			currency TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			item_id TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '{}',
			updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prizes_item_id ON prizes(item_id)`,
	}

	for _, query := range queries {
		if _, err := c.conn.Exec(query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}
	return nil
}

const upsertPrizeQuery = `INSERT INTO prizes (
	id, name, description, value, currency, image_url, item_id, metadata, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	description = excluded.description,
	value = excluded.value,
	currency = excluded.currency,
	image_url = excluded.image_url,
	item_id = excluded.item_id,
	metadata = excluded.metadata,
	updated_at = excluded.updated_at`

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func upsertPrize(ctx context.Context, db execer, p prize.Prize) error {
	if p.ID == "" {
		return fmt.Errorf("prize id is required")
	}

	metadata := "{}"
	if len(p.Metadata) > 0 {
		data, err := json.Marshal(p.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal prize metadata: %w", err)
		}
		metadata = string(data)
	}

	_, err := db.ExecContext(ctx, upsertPrizeQuery,
		p.ID,
		p.Name,
		p.Description,
		p.Value.String(),
		p.Currency,
		p.ImageURL,
		p.ItemID,
		metadata,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert prize %s: %w", p.ID, err)
	}
	return nil
}

// Upsert creates or updates a prize.
func (c *SQLCatalog) Upsert(ctx context.Context, p prize.Prize) error {
	return upsertPrize(ctx, c.conn, p)
}

// Lookup implements prize.Catalog.
func (c *SQLCatalog) Lookup(ctx context.Context, prizeID string) (prize.Prize, error) {
	query := `SELECT id, name, description, value, currency, image_url, item_id, metadata
		FROM prizes WHERE id = ?`

	var p prize.Prize
	var value, metadata string
	err := c.conn.QueryRowContext(ctx, query, prizeID).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&value,
		&p.Currency,
		&p.ImageURL,
		&p.ItemID,
		&metadata,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return prize.Prize{}, prize.ErrPrizeNotFound
	}
	if err != nil {
		return prize.Prize{}, fmt.Errorf("failed to query prize %s: %w", prizeID, err)
	}

	p.Value, err = decimal.NewFromString(value)
	if err != nil {
		return prize.Prize{}, fmt.Errorf("failed to parse value of prize %s: %w", prizeID, err)
	}

	if metadata != "" && metadata != "{}" {
		if err := json.Unmarshal([]byte(metadata), &p.Metadata); err != nil {
			return prize.Prize{}, fmt.Errorf("failed to parse metadata of prize %s: %w", prizeID, err)
		}
	}

	return p, nil
}

// UpsertAll writes every prize in a single transaction.
func (c *SQLCatalog) UpsertAll(ctx context.Context, prizes []prize.Prize) (int, error) {
	if len(prizes) == 0 {
		return 0, nil
	}

	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range prizes {
		if err := upsertPrize(ctx, tx, p); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(prizes), nil
}
