// internal/repository/repository.go

// Package repository reads and writes placement data in Postgres.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrReferralNotFound = errors.New("referral not found")
	ErrHomeNotFound     = errors.New("home not found")
	// ErrCorruptRecord marks a row whose jsonb columns cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt record")
)

// foreignKeyViolation is the Postgres SQLSTATE for a failed FK check.
const foreignKeyViolation = "23503"

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation
}

// decodeJSONB unmarshals a jsonb column. A NULL column leaves dst untouched.
func decodeJSONB(column string, raw []byte, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrCorruptRecord, column, err)
	}
	return nil
}

// encodeJSONB returns nil for a nil value so the column is written as NULL.
func encodeJSONB(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
