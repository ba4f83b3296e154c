package models

import "time"

// PaymentRecord запись об успешной оплате. После вставки не изменяется.
type PaymentRecord struct {
	ID             int64
	AccountID      string
	PaidAmount     float64
	DurationMonths int
	PaidAt         time.Time
	OrderID        string
	PaymentID      string
	Signature      string
}

// PaymentConfirmation данные, которые клиент передаёт после оплаты.
type PaymentConfirmation struct {
	OrderID   string
	PaymentID string
	Signature string
	AccountID string
	Amount    float64
	Months    int
}
