package payment

import "time"

type Status string

const (
	StatusReady                Status = "READY"
	StatusPaid                 Status = "PAID"
	StatusFailed               Status = "FAILED"
	StatusCancelled            Status = "CANCELLED"
	StatusVirtualAccountIssued Status = "VIRTUAL_ACCOUNT_ISSUED"
	StatusPartialCancelled     Status = "PARTIAL_CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusReady, StatusPaid, StatusFailed, StatusCancelled, StatusVirtualAccountIssued, StatusPartialCancelled:
		return true
	default:
		return false
	}
}

type Amount struct {
	Total     int64
	Paid      int64
	Cancelled int64
}

// Record is the gateway's authoritative view of one payment.
type Record struct {
	PaymentID  string
	Status     Status
	Amount     Amount
	Method     string
	PaidAt     *time.Time
	ReceiptURL string
}

// Refundable is what the gateway would still accept as a cancellation.
func (r Record) Refundable() int64 {
	left := r.Amount.Paid - r.Amount.Cancelled
	if left < 0 {
		return 0
	}
	return left
}

type Cancellation struct {
	CancellationID string
	CancelledAt    time.Time
}

// Summary is the locally cached copy of a Record shown to order owners.
// It is display data only; reconciliation always re-fetches.
type Summary struct {
	Status          Status
	Method          string
	PaidAmount      int64
	CancelledAmount int64
	PaidAt          *time.Time
	ReceiptURL      string
}

func SummaryOf(r Record) Summary {
	return Summary{
		Status:          r.Status,
		Method:          r.Method,
		PaidAmount:      r.Amount.Paid,
		CancelledAmount: r.Amount.Cancelled,
		PaidAt:          r.PaidAt,
		ReceiptURL:      r.ReceiptURL,
	}
}
