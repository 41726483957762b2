package order

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"
)

var (
	ErrNegativeAmount     = errors.New("amounts cannot be negative")
	ErrNegativeFinalPrice = errors.New("final price cannot be negative")
	ErrInvalidOrderNumber = errors.New("invalid order number")
)

// Pricing holds the amounts of one order in the smallest currency unit.
// finalPrice = price + shippingFee - discountAmount and is never negative.
type Pricing struct {
	price          int64
	shippingFee    int64
	discountAmount int64
}

func NewPricing(price, shippingFee, discountAmount int64) (Pricing, error) {
	if price < 0 || shippingFee < 0 || discountAmount < 0 {
		return Pricing{}, ErrNegativeAmount
	}
	p := Pricing{price: price, shippingFee: shippingFee, discountAmount: discountAmount}
	if p.FinalPrice() < 0 {
		return Pricing{}, ErrNegativeFinalPrice
	}
	return p, nil
}

func (p Pricing) Price() int64          { return p.price }
func (p Pricing) ShippingFee() int64    { return p.shippingFee }
func (p Pricing) DiscountAmount() int64 { return p.discountAmount }

func (p Pricing) FinalPrice() int64 {
	return p.price + p.shippingFee - p.discountAmount
}

// PercentDiscount floors price*percent/100 so a discount never exceeds what
// the percentage allows.
func PercentDiscount(price int64, percent int) int64 {
	if percent <= 0 || price <= 0 {
		return 0
	}
	if percent >= 100 {
		return price
	}
	return price * int64(percent) / 100
}

type Number string

const numberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewNumber builds "SF" + yyyymmdd + "-" + 6 random characters.
func NewNumber(now time.Time) Number {
	var b strings.Builder
	b.WriteString("SF")
	b.WriteString(now.Format("20060102"))
	b.WriteByte('-')
	max := big.NewInt(int64(len(numberAlphabet)))
	for range 6 {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			b.WriteByte(numberAlphabet[now.UnixNano()%int64(len(numberAlphabet))])
			continue
		}
		b.WriteByte(numberAlphabet[n.Int64()])
	}
	return Number(b.String())
}

func ParseNumber(s string) (Number, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 4 || len(s) > 40 {
		return "", ErrInvalidOrderNumber
	}
	return Number(s), nil
}

func (n Number) String() string {
	return string(n)
}
