// internal/models/home.go
package models

type HomeConstraints struct {
	MinAge        int      `json:"minAge"`
	MaxAge        int      `json:"maxAge"`
	GenderAllowed []Gender `json:"genderAllowed"`
	Notes         string   `json:"notes,omitempty"`
}

// Accepts reports whether g is in GenderAllowed.
func (c HomeConstraints) Accepts(g Gender) bool {
	for _, allowed := range c.GenderAllowed {
		if allowed == g {
			return true
		}
	}
	return false
}

type HomeCapabilities struct {
	DiabetesTrained bool `json:"diabetesTrained"`
	TraumaInformed  bool `json:"traumaInformed"`
	ADHDSupport     bool `json:"adhdSupport"`
	SpecialistStaff bool `json:"specialistStaff"`
	MentalHealth    bool `json:"mentalHealth"`
}

type Home struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Location     string           `json:"location"`
	FreeBeds     int              `json:"freeBeds"`
	Constraints  HomeConstraints  `json:"constraints"`
	Capabilities HomeCapabilities `json:"capabilities"`
	// IsRegistered is nil when registration has not been recorded.
	IsRegistered *bool `json:"isRegistered,omitempty"`
}
