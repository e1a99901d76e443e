// internal/matching/describe.go
package matching

import (
	"fmt"

	"placement-workers/internal/models"
)

// Facts carries the values a Describer may interpolate into reason text.
type Facts struct {
	FreeBeds     int
	Age          int
	Gender       models.Gender
	MinAge       int
	MaxAge       int
	HomeLocation string
}

// Describer renders display text for a reason code.
type Describer interface {
	Describe(code models.ReasonCode, need models.NeedKind, facts Facts) string
}

// EnglishDescriber renders the coordinator-facing English text.
type EnglishDescriber struct{}

var needText = map[models.NeedKind]struct{ met, unmet string }{
	models.NeedDiabetes:        {"Has diabetes-trained staff", "No diabetes-trained staff"},
	models.NeedTrauma:          {"Trauma-informed care available", "Not trauma-informed"},
	models.NeedADHD:            {"ADHD support programme", "No dedicated ADHD support"},
	models.NeedSpecialistStaff: {"Specialist staff on-site", "No specialist staff"},
	models.NeedMentalHealth:    {"Mental health support available", "Limited mental health support"},
}

func (EnglishDescriber) Describe(code models.ReasonCode, need models.NeedKind, f Facts) string {
	switch code {
	case models.ReasonBedsAvailable:
		if f.FreeBeds == 1 {
			return "1 bed available"
		}
		return fmt.Sprintf("%d beds available", f.FreeBeds)
	case models.ReasonNoBeds:
		return "No free beds"
	case models.ReasonGenderAccepted:
		return fmt.Sprintf("Accepts %s children", f.Gender)
	case models.ReasonGenderMismatch:
		return fmt.Sprintf("Cannot accept %s aged %d", f.Gender, f.Age)
	case models.ReasonAgeInRange:
		return fmt.Sprintf("Age %d within range (%d–%d)", f.Age, f.MinAge, f.MaxAge)
	case models.ReasonAgeOutOfRange:
		return fmt.Sprintf("Age %d outside range (%d–%d)", f.Age, f.MinAge, f.MaxAge)
	case models.ReasonNeedMet:
		return needText[need].met
	case models.ReasonNeedUnmet:
		return needText[need].unmet
	case models.ReasonSameLocation:
		return fmt.Sprintf("Same area (%s)", f.HomeLocation)
	case models.ReasonDoLUnregistered:
		return "Home is unregistered (DoL placement requires Ofsted-registered home)"
	case models.ReasonDoLRegistered:
		return "Home is Ofsted-registered"
	case models.ReasonDoLVerifyRestrictions:
		return "DoL restrictions apply: verify home can meet authorised conditions"
	}
	return string(code)
}
