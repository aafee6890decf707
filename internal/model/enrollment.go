package model

import "time"

// Enrollment is a class a student selected. It starts unpaid and is flipped to
// Paid when a payment covering it is recorded.
type Enrollment struct {
	ID        string    `json:"_id"`
	ClassID   string    `json:"classId"`
	ClassName string    `json:"className,omitempty"`
	Price     float64   `json:"price"`
	Email     string    `json:"email"`
	Paid      bool      `json:"paid"`
	CreatedAt time.Time `json:"createdAt"`
}

// Payment is the local record of a completed gateway charge.
// The gateway owns settlement; we only keep what the student paid for.
type Payment struct {
	ID            string    `json:"_id"`
	Email         string    `json:"email"`
	TransactionID string    `json:"transactionId"`
	Amount        float64   `json:"price"`
	ClassIDs      []string  `json:"classIds"`
	EnrollmentIDs []string  `json:"enrollmentIds"`
	Date          time.Time `json:"date"`
}
