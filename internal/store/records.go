package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/birthlog/internal/records"
)

// ErrRecordNotFound is returned when no birth record has the requested ID.
var ErrRecordNotFound = errors.New("birth record not found")

// timestampLayout is fixed-width so that lexical order matches time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// InsertRecord persists a new birth record. A UUID is assigned when the
// record has no ID.
func (db *DB) InsertRecord(ctx context.Context, rec *records.BirthRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	babies, err := json.Marshal(rec.Babies)
	if err != nil {
		return fmt.Errorf("encoding babies: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO birth_records
		(id, timestamp, babies, delivery_type, event_type, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, formatTimestamp(rec.Timestamp), string(babies), string(rec.DeliveryType),
		rec.EventType, rec.Notes, now, now,
	)
	return err
}

// UpdateRecord replaces the stored fields of an existing record.
func (db *DB) UpdateRecord(ctx context.Context, rec *records.BirthRecord) error {
	babies, err := json.Marshal(rec.Babies)
	if err != nil {
		return fmt.Errorf("encoding babies: %w", err)
	}
	result, err := db.conn.ExecContext(ctx,
		`UPDATE birth_records
		 SET timestamp = ?, babies = ?, delivery_type = ?, event_type = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		formatTimestamp(rec.Timestamp), string(babies), string(rec.DeliveryType),
		rec.EventType, rec.Notes, time.Now().UTC().Format(time.RFC3339), rec.ID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, rec.ID)
	}
	return nil
}

// GetRecord returns the record with the given ID.
func (db *DB) GetRecord(ctx context.Context, id string) (*records.BirthRecord, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, timestamp, babies, delivery_type, event_type, notes
		 FROM birth_records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return rec, err
}

// ListRecords returns all records, newest first. Records without a
// timestamp sort last.
func (db *DB) ListRecords(ctx context.Context) ([]records.BirthRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, timestamp, babies, delivery_type, event_type, notes
		 FROM birth_records
		 ORDER BY timestamp IS NULL, timestamp DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []records.BirthRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// DeleteRecord removes the record with the given ID.
func (db *DB) DeleteRecord(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM birth_records WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*records.BirthRecord, error) {
	var (
		rec                         records.BirthRecord
		ts, deliveryType, eventType sql.NullString
		notes                       sql.NullString
		babies                      string
	)
	if err := row.Scan(&rec.ID, &ts, &babies, &deliveryType, &eventType, &notes); err != nil {
		return nil, err
	}
	if ts.Valid && ts.String != "" {
		t, err := time.Parse(timestampLayout, ts.String)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp of record %s: %w", rec.ID, err)
		}
		rec.Timestamp = &t
	}
	if err := json.Unmarshal([]byte(babies), &rec.Babies); err != nil {
		return nil, fmt.Errorf("decoding babies of record %s: %w", rec.ID, err)
	}
	rec.DeliveryType = records.DeliveryType(deliveryType.String)
	rec.EventType = eventType.String
	rec.Notes = notes.String
	return &rec, nil
}

func formatTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timestampLayout)
}
