// Package usage tracks how many resume slots each user's plan allows and how
// many are taken.
package usage

import "errors"

var (
	// ErrLimitReached indicates every resume slot of the plan is taken.
	ErrLimitReached = errors.New("limit reached")
	// ErrInvalidPlan rejects a plan without a name or a positive limit.
	ErrInvalidPlan = errors.New("invalid plan")
)

// Plan is a named slot limit.
type Plan struct {
	Name  string `json:"plan"`
	Limit int    `json:"limit"`
}

// DefaultPlan is the plan given to new users.
var DefaultPlan = Plan{Name: "Starter", Limit: 3}

func (p Plan) valid() bool {
	return p.Name != "" && p.Limit > 0
}

// Usage is one user's plan and slot consumption.
type Usage struct {
	Plan  string `json:"plan"`
	Limit int    `json:"limit"`
	Used  int    `json:"used"`
}

// Remaining reports how many slots are still free.
func (u Usage) Remaining() int {
	return max(u.Limit-u.Used, 0)
}

// Allows reports whether n more slots fit in the plan.
func (u Usage) Allows(n int) bool {
	return n <= 0 || u.Used+n <= u.Limit
}

func (u *Usage) take(n int) error {
	if n <= 0 {
		return nil
	}
	if !u.Allows(n) {
		return ErrLimitReached
	}
	u.Used += n
	return nil
}

func (u *Usage) give(n int) {
	if n > 0 {
		u.Used = max(u.Used-n, 0)
	}
}

func defaultUsage(plan Plan) Usage {
	if !plan.valid() {
		plan = DefaultPlan
	}
	return Usage{Plan: plan.Name, Limit: plan.Limit}
}
