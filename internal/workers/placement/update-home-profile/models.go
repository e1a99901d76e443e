package updatehomeprofile

import (
	"context"

	"placement-workers/internal/models"
	"placement-workers/internal/repository"
)

// Input fields other than HomeID are optional. Constraints and Capabilities
// replace the stored objects whole.
type Input struct {
	HomeID       string                   `json:"homeId"`
	FreeBeds     *int                     `json:"freeBeds,omitempty"`
	Constraints  *models.HomeConstraints  `json:"constraints,omitempty"`
	Capabilities *models.HomeCapabilities `json:"capabilities,omitempty"`
}

type Output struct {
	HomeID  string `json:"homeId"`
	Updated bool   `json:"updated"`
}

type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, homeID string, update repository.HomeProfileUpdate) error
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}
