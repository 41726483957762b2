package coupon

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidCouponCode      = errors.New("invalid coupon code format")
	ErrInvalidDiscountPercent = errors.New("percentage discount must be between 1 and 100")
	ErrInvalidCouponType      = errors.New("invalid coupon type")
)

var couponCodeRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{2,31}$`)

type Code string

func NewCouponCode(code string) (Code, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !couponCodeRegex.MatchString(code) {
		return Code(""), ErrInvalidCouponCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

type Percent int

func NewPercent(p int) (Percent, error) {
	if p < 1 || p > 100 {
		return 0, ErrInvalidDiscountPercent
	}
	return Percent(p), nil
}

func (p Percent) Int() int {
	return int(p)
}
