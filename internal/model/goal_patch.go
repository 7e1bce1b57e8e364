package model

import (
	"cloud.google.com/go/civil"
)

// GoalPatch is a partial update to a goal. Nil fields are left untouched.
// CheckIns, when set, replaces the whole check-in set.
type GoalPatch struct {
	Status        *string      `json:"status,omitempty"`
	PaymentStatus *string      `json:"payment_status,omitempty"`
	CheckIns      []civil.Date `json:"check_ins,omitempty"`
}

func (p GoalPatch) IsEmpty() bool {
	return p.Status == nil && p.PaymentStatus == nil && p.CheckIns == nil
}

// Apply returns a copy of g with the patch applied.
func (p GoalPatch) Apply(g Goal) Goal {
	if p.Status != nil {
		g.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		g.PaymentStatus = *p.PaymentStatus
	}
	if p.CheckIns != nil {
		g.CheckIns = append([]civil.Date(nil), p.CheckIns...)
	}
	return g
}

func StringPtr(s string) *string {
	return &s
}
