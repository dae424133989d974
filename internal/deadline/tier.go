package deadline

import (
	"math"
	"time"
)

// Tier is the urgency classification of a deadline. A subject lands in
// exactly the tightest tier whose threshold it satisfies.
type Tier int

const (
	TierImminent Tier = iota
	TierNear
	TierUpcoming
)

func (t Tier) String() string {
	switch t {
	case TierImminent:
		return "imminent"
	case TierNear:
		return "near"
	case TierUpcoming:
		return "upcoming"
	default:
		return "unknown"
	}
}

// Thresholds are the lead-time boundaries in days, tightest first.
type Thresholds struct {
	Imminent int
	Near     int
	Upcoming int
}

// DefaultThresholds returns the standard 1/7/30 day windows.
func DefaultThresholds() Thresholds {
	return Thresholds{Imminent: 1, Near: 7, Upcoming: 30}
}

// Days returns the day boundary of a tier under these thresholds.
func (th Thresholds) Days(t Tier) int {
	switch t {
	case TierImminent:
		return th.Imminent
	case TierNear:
		return th.Near
	default:
		return th.Upcoming
	}
}

// Classify maps a remaining day count onto the tightest matching tier.
// The second return is false when the deadline lies beyond the widest window
// or in the past.
func Classify(daysRemaining int, th Thresholds) (Tier, bool) {
	switch {
	case daysRemaining < 0:
		return 0, false
	case daysRemaining <= th.Imminent:
		return TierImminent, true
	case daysRemaining <= th.Near:
		return TierNear, true
	case daysRemaining <= th.Upcoming:
		return TierUpcoming, true
	default:
		return 0, false
	}
}

// DaysRemaining computes ceil((deadline - now) / 24h). A deadline exactly
// 24h out counts as 1 day; anything between 24h and 48h counts as 2.
func DaysRemaining(now, deadline time.Time) int {
	return int(math.Ceil(deadline.Sub(now).Hours() / 24))
}
