// internal/matching/engine.go

// Package matching ranks candidate care homes for a referral. It performs no
// I/O: callers load the referral, the home pool and the thread index and hand
// them over as plain values.
package matching

import (
	"sort"
	"strings"

	"placement-workers/internal/models"
)

const (
	BaseScore     = 50
	MinScore      = 0
	MaxScore      = 100
	LocationBonus = 10
)

type needRule struct {
	kind    models.NeedKind
	wanted  func(models.ChildNeeds) bool
	offered func(models.HomeCapabilities) bool
	met     int
	unmet   int
}

// needRules is evaluated in order; reasons follow the same order.
var needRules = []needRule{
	{
		kind:    models.NeedDiabetes,
		wanted:  func(n models.ChildNeeds) bool { return n.Diabetes },
		offered: func(c models.HomeCapabilities) bool { return c.DiabetesTrained },
		met:     15,
		unmet:   -10,
	},
	{
		kind:    models.NeedTrauma,
		wanted:  func(n models.ChildNeeds) bool { return n.Trauma },
		offered: func(c models.HomeCapabilities) bool { return c.TraumaInformed },
		met:     15,
		unmet:   -10,
	},
	{
		kind:    models.NeedADHD,
		wanted:  func(n models.ChildNeeds) bool { return n.ADHD },
		offered: func(c models.HomeCapabilities) bool { return c.ADHDSupport },
		met:     15,
		unmet:   -10,
	},
	{
		kind:    models.NeedSpecialistStaff,
		wanted:  func(n models.ChildNeeds) bool { return n.SpecialistStaff },
		offered: func(c models.HomeCapabilities) bool { return c.SpecialistStaff },
		met:     10,
		unmet:   -5,
	},
	{
		kind:    models.NeedMentalHealth,
		wanted:  func(n models.ChildNeeds) bool { return n.MentalHealth },
		offered: func(c models.HomeCapabilities) bool { return c.MentalHealth },
		met:     10,
		unmet:   -5,
	},
}

// Engine scores homes against a referral. The zero value is not usable; use
// NewEngine. An Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	describer Describer
}

func NewEngine(describer Describer) *Engine {
	if describer == nil {
		describer = EnglishDescriber{}
	}
	return &Engine{describer: describer}
}

var defaultEngine = NewEngine(nil)

// ComputeMatches evaluates homes with the default English describer.
func ComputeMatches(referral models.ReferralSnapshot, homes []models.Home, threads models.ThreadIndex) []models.HomeMatch {
	return defaultEngine.ComputeMatches(referral, homes, threads)
}

// ComputeMatches returns one HomeMatch per home, eligible homes first and
// then by score, highest first. Ties keep input order.
func (e *Engine) ComputeMatches(referral models.ReferralSnapshot, homes []models.Home, threads models.ThreadIndex) []models.HomeMatch {
	matches := make([]models.HomeMatch, 0, len(homes))
	for _, home := range homes {
		matches = append(matches, e.Evaluate(referral, home, threads))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Eligible != matches[j].Eligible {
			return matches[i].Eligible
		}
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// Evaluate scores a single home. Under a DoL order only an explicit
// IsRegistered == false disqualifies; an unknown registration gets neither
// a pass nor a fail reason, only the verify-restrictions warning.
func (e *Engine) Evaluate(referral models.ReferralSnapshot, home models.Home, threads models.ThreadIndex) models.HomeMatch {
	child := referral.Child
	ev := evaluation{
		describer: e.describer,
		score:     BaseScore,
		eligible:  true,
		facts: Facts{
			FreeBeds:     home.FreeBeds,
			Age:          child.Age,
			Gender:       child.Gender,
			MinAge:       home.Constraints.MinAge,
			MaxAge:       home.Constraints.MaxAge,
			HomeLocation: home.Location,
		},
	}

	// Hard filters.
	if home.FreeBeds > 0 {
		ev.pass(models.ReasonBedsAvailable, "", 0)
	} else {
		ev.fail(models.ReasonNoBeds)
	}

	if home.Constraints.Accepts(child.Gender) {
		ev.pass(models.ReasonGenderAccepted, "", 0)
	} else {
		ev.fail(models.ReasonGenderMismatch)
	}

	if child.Age >= home.Constraints.MinAge && child.Age <= home.Constraints.MaxAge {
		ev.pass(models.ReasonAgeInRange, "", 0)
	} else {
		ev.fail(models.ReasonAgeOutOfRange)
	}

	// Soft scoring runs even for ineligible homes so the reasons stay complete.
	for _, rule := range needRules {
		if !rule.wanted(referral.Needs) {
			continue
		}
		if rule.offered(home.Capabilities) {
			ev.pass(models.ReasonNeedMet, rule.kind, rule.met)
		} else {
			ev.warn(models.ReasonNeedUnmet, rule.kind, rule.unmet)
		}
	}

	if strings.EqualFold(home.Location, child.Location) {
		ev.pass(models.ReasonSameLocation, "", LocationBonus)
	}

	if referral.DoLApplies() {
		// Only an explicit false disqualifies; unknown registration passes
		// without a reason.
		if home.IsRegistered != nil {
			if *home.IsRegistered {
				ev.pass(models.ReasonDoLRegistered, "", 0)
			} else {
				ev.fail(models.ReasonDoLUnregistered)
			}
		}
		ev.warn(models.ReasonDoLVerifyRestrictions, "", 0)
	}

	return models.HomeMatch{
		HomeID:           home.ID,
		HomeName:         home.Name,
		Location:         home.Location,
		FreeBeds:         home.FreeBeds,
		Score:            ev.finalScore(),
		Eligible:         ev.eligible,
		Reasons:          ev.reasons,
		ExistingThreadID: threads.Lookup(home.ID),
	}
}

// evaluation accumulates the outcome for one home.
type evaluation struct {
	describer Describer
	facts     Facts
	score     int
	eligible  bool
	reasons   []models.MatchReason
}

func (ev *evaluation) pass(code models.ReasonCode, need models.NeedKind, delta int) {
	ev.add(models.LevelPass, code, need, delta)
}

func (ev *evaluation) warn(code models.ReasonCode, need models.NeedKind, delta int) {
	ev.add(models.LevelWarn, code, need, delta)
}

func (ev *evaluation) fail(code models.ReasonCode) {
	ev.eligible = false
	ev.add(models.LevelFail, code, "", 0)
}

func (ev *evaluation) add(level models.ReasonLevel, code models.ReasonCode, need models.NeedKind, delta int) {
	ev.score += delta
	ev.reasons = append(ev.reasons, models.MatchReason{
		Level: level,
		Code:  code,
		Need:  need,
		Text:  ev.describer.Describe(code, need, ev.facts),
	})
}

func (ev *evaluation) finalScore() int {
	if !ev.eligible {
		return 0
	}
	return clamp(ev.score, MinScore, MaxScore)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
