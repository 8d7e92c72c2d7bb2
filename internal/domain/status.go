package domain

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusDepositPaid    Status = "deposit_paid"
	StatusPaid           Status = "paid"
	StatusPaymentFailed  Status = "payment_failed"
	StatusScheduled      Status = "scheduled"
	StatusInProgress     Status = "in_progress"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
	StatusRefunded       Status = "refunded"
)

var Statuses = []Status{
	StatusPendingPayment,
	StatusDepositPaid,
	StatusPaid,
	StatusPaymentFailed,
	StatusScheduled,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusRefunded,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// AcceptsPayment reports whether a new payment intent may be created.
func (s Status) AcceptsPayment(kind PaymentKind) bool {
	switch s {
	case StatusPendingPayment, StatusPaymentFailed:
		return true
	case StatusDepositPaid:
		return kind == PaymentFull
	}
	return false
}

// AfterPaymentSucceeded returns the status once an intent of the given kind settles.
// A deposit never downgrades a request that is already fully paid or further along.
func (s Status) AfterPaymentSucceeded(kind PaymentKind) Status {
	if kind == PaymentFull {
		switch s {
		case StatusPendingPayment, StatusPaymentFailed, StatusDepositPaid:
			return StatusPaid
		}
		return s
	}

	switch s {
	case StatusPendingPayment, StatusPaymentFailed:
		return StatusDepositPaid
	}
	return s
}

// AfterPaymentFailed only marks requests nobody has paid for yet.
func (s Status) AfterPaymentFailed() Status {
	if s == StatusPendingPayment {
		return StatusPaymentFailed
	}
	return s
}

// AfterRefund marks the request refunded once refunds cover everything captured on it.
// Refunding one of two charges leaves the status alone.
func (s Status) AfterRefund(ledger Ledger) Status {
	if ledger.Paid > 0 && ledger.Refunded >= ledger.Paid {
		return StatusRefunded
	}
	return s
}
