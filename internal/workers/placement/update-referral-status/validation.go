package updatereferralstatus

import "placement-workers/internal/common/validation"

// GetInputSchema checks shape only; status values are checked against
// models.ReferralStatuses so an unknown status gets its own error code.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"referralId", "status"},
		Properties: map[string]validation.Property{
			"referralId": {
				Type:        "string",
				Description: "Referral to update",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(64),
			},
			"status": {
				Type:        "string",
				Description: "Target referral status",
				MinLength:   validation.IntPtr(1),
			},
			"changedBy": {
				Type:        "string",
				Description: "User or system making the change",
				MaxLength:   validation.IntPtr(255),
			},
		},
	}
}
