package updatereferralstatus

import (
	"context"

	"placement-workers/internal/models"
	"placement-workers/internal/repository"
)

type Input struct {
	ReferralID string                `json:"referralId"`
	Status     models.ReferralStatus `json:"status"`
	ChangedBy  string                `json:"changedBy,omitempty"`
}

type Output struct {
	ReferralID     string                `json:"referralId"`
	PreviousStatus models.ReferralStatus `json:"previousStatus"`
	Status         models.ReferralStatus `json:"status"`
	EventID        string                `json:"eventId"`
}

// StatusUpdater is satisfied by repository.ReferralRepository.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, referralID string, to models.ReferralStatus, changedBy string) (*repository.StatusChange, error)
}
