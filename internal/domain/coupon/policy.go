package coupon

import (
	"time"

	"github.com/google/uuid"
)

type EligibilityInput struct {
	UserID          uuid.UUID
	Type            Type
	CompletedOrders int
	Now             time.Time
}

type Eligibility struct {
	Eligible        bool
	CompletedOrders int
	Reason          string
}

// Policy decides eligibility for coupon types other than repurchase, whose
// rule is fixed.
type Policy interface {
	Evaluate(in EligibilityInput) Eligibility
}

type PolicyFunc func(in EligibilityInput) Eligibility

func (f PolicyFunc) Evaluate(in EligibilityInput) Eligibility {
	return f(in)
}

// AllowAll is the default policy.
var AllowAll = PolicyFunc(func(in EligibilityInput) Eligibility {
	return Eligibility{Eligible: true, CompletedOrders: in.CompletedOrders}
})

func CheckEligibility(p Policy, in EligibilityInput) Eligibility {
	if in.Type == TypeRepurchase {
		if in.CompletedOrders < 1 {
			return Eligibility{CompletedOrders: in.CompletedOrders, Reason: "no completed orders"}
		}
		return Eligibility{Eligible: true, CompletedOrders: in.CompletedOrders}
	}
	if p == nil {
		p = AllowAll
	}
	e := p.Evaluate(in)
	e.CompletedOrders = in.CompletedOrders
	return e
}

// NextClaimSeq returns the claim sequence for a new claim, given how many
// claims the user already holds for the coupon. Non-repeatable coupons only
// ever use sequence 1; repurchase coupons get one claim per completed order.
func NextClaimSeq(t Type, existingClaims, completedOrders int) (int, error) {
	if !t.Repeatable() {
		if existingClaims > 0 {
			return 0, ErrAlreadyClaimed
		}
		return 1, nil
	}
	seq := existingClaims + 1
	if seq > completedOrders {
		return 0, ErrAlreadyClaimed
	}
	return seq, nil
}
