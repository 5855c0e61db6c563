package telemetry

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteSink appends samples to the local telemetry log opened by db.Open.
type SQLiteSink struct {
	db *sql.DB
}

func NewSQLiteSink(db *sql.DB) *SQLiteSink {
	return &SQLiteSink{db: db}
}

func (s *SQLiteSink) Name() string { return "sqlite" }

func (s *SQLiteSink) EnsureChannels(ctx context.Context, group string, channels []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO telemetry_groups (name) VALUES (?)`, group); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	for _, ch := range channels {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO telemetry_channels (group_name, name) VALUES (?, ?)`, group, ch); err != nil {
			return fmt.Errorf("insert channel %s: %w", ch, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteSink) Send(ctx context.Context, group string, sample Sample) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	at := sample.CapturedAt.UnixMilli()
	for _, v := range sample.Values() {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO telemetry_samples (channel_id, captured_at, value)
			SELECT id, ?, ? FROM telemetry_channels WHERE group_name = ? AND name = ?`,
			at, v.Text, group, v.Channel)
		if err != nil {
			return fmt.Errorf("insert %s: %w", v.Channel, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("channel %s/%s does not exist", group, v.Channel)
		}
	}
	return tx.Commit()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
