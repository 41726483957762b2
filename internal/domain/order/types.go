package order

type Status string

const (
	StatusPending         Status = "pending"
	StatusPaid            Status = "paid"
	StatusShipping        Status = "shipping"
	StatusDelivered       Status = "delivered"
	StatusCancelled       Status = "cancelled"
	StatusPartialRefunded Status = "partial_refunded"
	StatusRefunded        Status = "refunded"
)

var transitions = map[Status][]Status{
	StatusPending:         {StatusPaid, StatusCancelled},
	StatusPaid:            {StatusShipping, StatusCancelled, StatusPartialRefunded, StatusRefunded},
	StatusShipping:        {StatusDelivered, StatusPartialRefunded, StatusRefunded},
	StatusPartialRefunded: {StatusPartialRefunded, StatusRefunded},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipping, StatusDelivered,
		StatusCancelled, StatusPartialRefunded, StatusRefunded:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusRefunded
}

// IsSettled reports whether the payment for the order has been confirmed at
// some point, i.e. reconciliation already ran to completion.
func (s Status) IsSettled() bool {
	switch s {
	case StatusPaid, StatusShipping, StatusDelivered, StatusPartialRefunded, StatusRefunded:
		return true
	default:
		return false
	}
}

// CountsAsCompleted is the set used for repurchase eligibility.
func (s Status) CountsAsCompleted() bool {
	return s == StatusPaid || s == StatusShipping || s == StatusDelivered
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CompletedStatuses lists the statuses counted by CountsAsCompleted, for queries.
func CompletedStatuses() []Status {
	return []Status{StatusPaid, StatusShipping, StatusDelivered}
}
