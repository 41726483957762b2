package coupon

type Type string

const (
	TypeWelcome    Type = "welcome"
	TypeBirthday   Type = "birthday"
	TypeReferral   Type = "referral"
	TypeRepurchase Type = "repurchase"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case TypeWelcome, TypeBirthday, TypeReferral, TypeRepurchase:
		return true
	default:
		return false
	}
}

// Repeatable coupons may be claimed again; repurchase coupons once per
// completed order.
func (t Type) Repeatable() bool {
	return t == TypeRepurchase
}
