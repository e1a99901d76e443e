// internal/repository/threads.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"placement-workers/internal/models"
)

type ThreadRepository struct {
	db *sql.DB
}

func NewThreadRepository(db *sql.DB) *ThreadRepository {
	return &ThreadRepository{db: db}
}

// IndexForReferral maps each contacted home to its thread. When a home has
// several threads the most recent one wins.
func (r *ThreadRepository) IndexForReferral(ctx context.Context, referralID string) (models.ThreadIndex, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT home_id, id FROM threads
		WHERE referral_id = $1
		ORDER BY created_at ASC`, referralID)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	index := make(models.ThreadIndex)
	for rows.Next() {
		var homeID, threadID string
		if err := rows.Scan(&homeID, &threadID); err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		index[homeID] = threadID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}

	return index, nil
}
