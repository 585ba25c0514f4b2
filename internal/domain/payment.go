package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodPayPal       PaymentMethod = "paypal"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

type Payment struct {
	ID          int64
	CustomerID  int64
	AmountCents int64
	Currency    string
	Method      PaymentMethod
	Status      PaymentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidPaymentMethod reports whether m is a supported payment method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPayPal, PaymentMethodBankTransfer:
		return true
	}
	return false
}
