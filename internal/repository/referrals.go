// internal/repository/referrals.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"placement-workers/internal/common/database"
	"placement-workers/internal/models"
)

type ReferralRepository struct {
	db     *sql.DB
	events *EventRepository
}

func NewReferralRepository(db *sql.DB) *ReferralRepository {
	return &ReferralRepository{db: db, events: NewEventRepository(db)}
}

// GetSnapshot loads the fields the matching engine reads.
func (r *ReferralRepository) GetSnapshot(ctx context.Context, referralID string) (*models.ReferralSnapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, child_profile, needs, legal_status
		FROM referrals WHERE id = $1`, referralID)

	var (
		snapshot                   models.ReferralSnapshot
		profile, needs, legalState []byte
	)
	if err := row.Scan(&snapshot.ID, &profile, &needs, &legalState); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrReferralNotFound, referralID)
		}
		return nil, fmt.Errorf("load referral %s: %w", referralID, err)
	}

	if err := decodeJSONB("child_profile", profile, &snapshot.Child); err != nil {
		return nil, err
	}
	if err := decodeJSONB("needs", needs, &snapshot.Needs); err != nil {
		return nil, err
	}
	if len(legalState) > 0 && string(legalState) != "null" {
		var legal models.LegalStatus
		if err := decodeJSONB("legal_status", legalState, &legal); err != nil {
			return nil, err
		}
		snapshot.LegalStatus = &legal
	}

	return &snapshot, nil
}

// StatusChange is the result of UpdateStatus.
type StatusChange struct {
	From    models.ReferralStatus
	To      models.ReferralStatus
	EventID string
}

// UpdateStatus moves a referral to status and records a STATUS_CHANGE event
// in the same transaction.
func (r *ReferralRepository) UpdateStatus(ctx context.Context, referralID string, to models.ReferralStatus, changedBy string) (*StatusChange, error) {
	change := &StatusChange{To: to}

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT status FROM referrals WHERE id = $1 FOR UPDATE`, referralID)
		if err := row.Scan(&change.From); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", ErrReferralNotFound, referralID)
			}
			return fmt.Errorf("read status: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE referrals SET status = $2 WHERE id = $1`, referralID, string(to)); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		eventID, err := r.events.record(ctx, tx, referralID, models.EventStatusChange, map[string]interface{}{
			"from":      change.From,
			"to":        to,
			"changedBy": changedBy,
		})
		if err != nil {
			return err
		}
		change.EventID = eventID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return change, nil
}
