package model

import "time"

// Unlimited marks a plan limit with no cap.
const Unlimited = -1

// PlanLimits describes what a subscription tier allows.
type PlanLimits struct {
	Platforms         int    `json:"platforms"`
	Roles             int    `json:"roles"`
	PostsPerDay       int    `json:"postsPerDay"`
	TrendsPerDay      int    `json:"trendsPerDay"`
	Analytics         string `json:"analytics"`
	Scheduling        bool   `json:"scheduling"`
	Notifications     bool   `json:"notifications"`
	TeamCollaboration bool   `json:"teamCollaboration"`
	WhiteLabel        bool   `json:"whiteLabel"`
}

var planLimits = map[Plan]PlanLimits{
	PlanFree: {
		Platforms:    1,
		Roles:        1,
		PostsPerDay:  5,
		TrendsPerDay: 3,
		Analytics:    "basic",
	},
	PlanPro: {
		Platforms:     5,
		Roles:         Unlimited,
		PostsPerDay:   Unlimited,
		TrendsPerDay:  Unlimited,
		Analytics:     "advanced",
		Scheduling:    true,
		Notifications: true,
	},
	PlanAgency: {
		Platforms:         Unlimited,
		Roles:             Unlimited,
		PostsPerDay:       Unlimited,
		TrendsPerDay:      Unlimited,
		Analytics:         "premium",
		Scheduling:        true,
		Notifications:     true,
		TeamCollaboration: true,
		WhiteLabel:        true,
	},
}

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	_, ok := planLimits[p]
	return ok
}

// LimitsFor returns the limits of plan, falling back to the free tier.
func LimitsFor(plan Plan) PlanLimits {
	if limits, ok := planLimits[plan]; ok {
		return limits
	}
	return planLimits[PlanFree]
}

// Limits returns the limits of the user's current plan.
func (u *User) Limits() PlanLimits {
	return LimitsFor(u.Subscription.Plan)
}

// ResetDailyUsage zeroes today's counter when now falls on a later local
// calendar day than the last reset. It reports whether a reset happened.
func (u *User) ResetDailyUsage(now time.Time) bool {
	if !dayAfter(now, u.Usage.LastResetDate) {
		return false
	}
	u.Usage.PostsGeneratedToday = 0
	u.Usage.LastResetDate = now
	return true
}

// CanGeneratePost applies the daily reset and reports whether the plan
// allows another post today.
func (u *User) CanGeneratePost(now time.Time) bool {
	u.ResetDailyUsage(now)
	limit := u.Limits().PostsPerDay
	return limit == Unlimited || u.Usage.PostsGeneratedToday < limit
}

// RecordPostGenerated increments the lifetime and daily counters.
func (u *User) RecordPostGenerated(now time.Time) {
	u.ResetDailyUsage(now)
	u.Usage.PostsGenerated++
	u.Usage.PostsGeneratedToday++
}

// PostsRemainingToday returns the posts left today, or Unlimited.
func (u *User) PostsRemainingToday() int {
	limit := u.Limits().PostsPerDay
	if limit == Unlimited {
		return Unlimited
	}
	if remaining := limit - u.Usage.PostsGeneratedToday; remaining > 0 {
		return remaining
	}
	return 0
}

func dayAfter(now, last time.Time) bool {
	ny, nm, nd := now.In(time.Local).Date()
	ly, lm, ld := last.In(time.Local).Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.Local)
	lastDay := time.Date(ly, lm, ld, 0, 0, 0, 0, time.Local)
	return today.After(lastDay)
}
