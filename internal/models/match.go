// internal/models/match.go
package models

type ReasonLevel string

const (
	LevelPass ReasonLevel = "pass"
	LevelWarn ReasonLevel = "warn"
	LevelFail ReasonLevel = "fail"
)

type ReasonCode string

const (
	ReasonNoBeds                ReasonCode = "NO_BEDS"
	ReasonBedsAvailable         ReasonCode = "BEDS_AVAILABLE"
	ReasonGenderMismatch        ReasonCode = "GENDER_MISMATCH"
	ReasonGenderAccepted        ReasonCode = "GENDER_ACCEPTED"
	ReasonAgeOutOfRange         ReasonCode = "AGE_OUT_OF_RANGE"
	ReasonAgeInRange            ReasonCode = "AGE_IN_RANGE"
	ReasonNeedMet               ReasonCode = "NEED_MET"
	ReasonNeedUnmet             ReasonCode = "NEED_UNMET"
	ReasonSameLocation          ReasonCode = "SAME_LOCATION"
	ReasonDoLUnregistered       ReasonCode = "DOL_UNREGISTERED"
	ReasonDoLRegistered         ReasonCode = "DOL_REGISTERED"
	ReasonDoLVerifyRestrictions ReasonCode = "DOL_VERIFY_RESTRICTIONS"
)

type NeedKind string

const (
	NeedDiabetes        NeedKind = "diabetes"
	NeedTrauma          NeedKind = "trauma"
	NeedADHD            NeedKind = "adhd"
	NeedSpecialistStaff NeedKind = "specialistStaff"
	NeedMentalHealth    NeedKind = "mentalHealth"
)

type MatchReason struct {
	Level ReasonLevel `json:"level"`
	Code  ReasonCode  `json:"code"`
	Need  NeedKind    `json:"need,omitempty"`
	Text  string      `json:"text"`
}

type HomeMatch struct {
	HomeID           string        `json:"homeId"`
	HomeName         string        `json:"homeName"`
	Location         string        `json:"location"`
	FreeBeds         int           `json:"freeBeds"`
	Score            int           `json:"score"`
	Eligible         bool          `json:"eligible"`
	Reasons          []MatchReason `json:"reasons"`
	ExistingThreadID *string       `json:"existingThreadId"`
}
