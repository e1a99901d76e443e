// internal/repository/events.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"placement-workers/internal/models"

	"github.com/google/uuid"
)

// EventRepository appends to the referral audit trail.
type EventRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db, now: time.Now}
}

// Record inserts an event and returns its id.
func (r *EventRepository) Record(ctx context.Context, referralID string, eventType models.EventType, payload interface{}) (string, error) {
	return r.record(ctx, r.db, referralID, eventType, payload)
}

func (r *EventRepository) record(ctx context.Context, exec execer, referralID string, eventType models.EventType, payload interface{}) (string, error) {
	body, err := encodeJSONB(payload)
	if err != nil {
		return "", fmt.Errorf("encode event payload: %w", err)
	}

	id := uuid.New().String()
	_, err = exec.ExecContext(ctx, `
		INSERT INTO events (id, referral_id, type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		id, referralID, string(eventType), body, r.now().UTC())
	if err != nil {
		if isForeignKeyViolation(err) {
			return "", fmt.Errorf("%w: %s", ErrReferralNotFound, referralID)
		}
		return "", fmt.Errorf("insert %s event: %w", eventType, err)
	}

	return id, nil
}
