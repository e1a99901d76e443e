package computehomematches

import (
	"context"

	"placement-workers/internal/common/observability"
	"placement-workers/internal/models"
	"placement-workers/internal/search"
)

type Input struct {
	ReferralID string `json:"referralId"`
}

type Output struct {
	ReferralID    string             `json:"referralId"`
	Matches       []models.HomeMatch `json:"matches"`
	EligibleCount int                `json:"eligibleCount"`
	TotalHomes    int                `json:"totalHomes"`
	TopHomeID     string             `json:"topHomeId,omitempty"`
}

type ReferralSource interface {
	GetSnapshot(ctx context.Context, referralID string) (*models.ReferralSnapshot, error)
}

type HomeSource interface {
	ListAll(ctx context.Context) ([]models.Home, error)
}

type ThreadSource interface {
	IndexForReferral(ctx context.Context, referralID string) (models.ThreadIndex, error)
}

type EventRecorder interface {
	Record(ctx context.Context, referralID string, eventType models.EventType, payload interface{}) (string, error)
}

type MatchIndexer interface {
	IndexName() string
	Index(ctx context.Context, doc search.MatchDocument) (string, error)
}

// Dependencies are the stores the handler reads and writes. Events, Indexer
// and Observability are optional.
type Dependencies struct {
	Referrals     ReferralSource
	Homes         HomeSource
	Threads       ThreadSource
	Events        EventRecorder
	Indexer       MatchIndexer
	Observability *observability.Observability
}
