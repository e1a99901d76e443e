package computehomematches

import "placement-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"referralId"},
		Properties: map[string]validation.Property{
			"referralId": {
				Type:        "string",
				Description: "Referral to compute matches for",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(64),
			},
		},
	}
}
