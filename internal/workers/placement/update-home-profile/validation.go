package updatehomeprofile

import "placement-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	age := func(desc string) validation.Property {
		return validation.Property{
			Type:        "integer",
			Description: desc,
			Minimum:     validation.Float64Ptr(0),
			Maximum:     validation.Float64Ptr(18),
		}
	}

	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"homeId"},
		Properties: map[string]validation.Property{
			"homeId": {
				Type:        "string",
				Description: "Home to update",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(64),
			},
			"freeBeds": {
				Type:        "integer",
				Description: "Currently free beds",
				Minimum:     validation.Float64Ptr(0),
			},
			"constraints": {
				Type:        "object",
				Description: "Hard admission constraints",
				Required:    []string{"minAge", "maxAge", "genderAllowed"},
				Properties: map[string]validation.Property{
					"minAge": age("Youngest admissible age"),
					"maxAge": age("Oldest admissible age"),
					"genderAllowed": {
						Type:        "array",
						Description: "Admissible genders",
						Items: &validation.Property{
							Type: "string",
							Enum: []string{"male", "female"},
						},
					},
					"notes": {Type: "string"},
				},
				AdditionalProperties: validation.BoolPtr(false),
			},
			"capabilities": {
				Type:        "object",
				Description: "Care capabilities",
				Properties: map[string]validation.Property{
					"diabetesTrained": {Type: "boolean"},
					"traumaInformed":  {Type: "boolean"},
					"adhdSupport":     {Type: "boolean"},
					"specialistStaff": {Type: "boolean"},
					"mentalHealth":    {Type: "boolean"},
				},
				AdditionalProperties: validation.BoolPtr(false),
			},
		},
	}
}
