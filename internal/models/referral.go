// internal/models/referral.go
package models

import "fmt"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

type ReferralStatus string

const (
	StatusNew              ReferralStatus = "NEW"
	StatusTriaged          ReferralStatus = "TRIAGED"
	StatusOutreach         ReferralStatus = "OUTREACH"
	StatusAwaitingResponse ReferralStatus = "AWAITING_RESPONSE"
	StatusDecision         ReferralStatus = "DECISION"
	StatusPlaced           ReferralStatus = "PLACED"
	StatusClosed           ReferralStatus = "CLOSED"
)

// ReferralStatuses lists every status in workflow order.
var ReferralStatuses = []ReferralStatus{
	StatusNew,
	StatusTriaged,
	StatusOutreach,
	StatusAwaitingResponse,
	StatusDecision,
	StatusPlaced,
	StatusClosed,
}

func (s ReferralStatus) Valid() bool {
	for _, known := range ReferralStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type LegalBasis string

const (
	LegalBasisNone                   LegalBasis = "NONE"
	LegalBasisCourtOfProtection      LegalBasis = "COURT_OF_PROTECTION"
	LegalBasisHighCourtInherent      LegalBasis = "HIGH_COURT_INHERENT"
	LegalBasisSecureAccommodationS25 LegalBasis = "SECURE_ACCOMMODATION_S25"
	LegalBasisMHA                    LegalBasis = "MHA"
	LegalBasisOther                  LegalBasis = "OTHER"
)

type ChildProfile struct {
	Name           string `json:"name"`
	Age            int    `json:"age"`
	Gender         Gender `json:"gender"`
	Location       string `json:"location"`
	LocalAuthority string `json:"localAuthority"`
}

type ChildNeeds struct {
	ADHD            bool `json:"adhd"`
	Diabetes        bool `json:"diabetes"`
	Trauma          bool `json:"trauma"`
	SpecialistStaff bool `json:"specialistStaff"`
	MentalHealth    bool `json:"mentalHealth"`
	SelfHarm        bool `json:"selfHarm"`
	Violence        bool `json:"violence"`
	Absconding      bool `json:"absconding"`
}

// LegalStatus describes a Deprivation of Liberty order. Nothing but
// Applicable is read unless Applicable is true.
type LegalStatus struct {
	Applicable             bool       `json:"applicable"`
	LegalBasis             LegalBasis `json:"legalBasis,omitempty"`
	OrderRef               string     `json:"orderRef,omitempty"`
	Court                  string     `json:"court,omitempty"`
	DateMade               string     `json:"dateMade,omitempty"`
	ExpiryDate             string     `json:"expiryDate,omitempty"`
	ReviewDue              string     `json:"reviewDue,omitempty"`
	AuthorisedRestrictions []string   `json:"authorisedRestrictions,omitempty"`
	PlacementRegistered    *bool      `json:"placementRegistered"`
	Notes                  string     `json:"notes,omitempty"`
}

// ReferralSnapshot is the slice of a referral the matching engine reads.
type ReferralSnapshot struct {
	ID          string       `json:"id"`
	Child       ChildProfile `json:"childProfile"`
	Needs       ChildNeeds   `json:"needs"`
	LegalStatus *LegalStatus `json:"legalStatus,omitempty"`
}

// DoLApplies reports whether a Deprivation of Liberty order is in force.
func (r ReferralSnapshot) DoLApplies() bool {
	return r.LegalStatus != nil && r.LegalStatus.Applicable
}

// Validate checks the fields the engine relies on.
func (r ReferralSnapshot) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("referral id is required")
	}
	if r.Child.Age < 0 || r.Child.Age > 18 {
		return fmt.Errorf("child age %d outside 0-18", r.Child.Age)
	}
	if !r.Child.Gender.Valid() {
		return fmt.Errorf("unknown child gender %q", r.Child.Gender)
	}
	return nil
}
