package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/repository"
)

var _ repository.PaymentRepository = (*PaymentDB)(nil)

// PaymentDB is the payments table. The id lists are stored as JSON arrays;
// nothing ever filters on them.
type PaymentDB struct {
	conn *sql.DB
}

func (p *PaymentDB) Create(ctx context.Context, payment *model.Payment) (*model.InsertResult, error) {
	payment.ID = xid.New().String()
	if payment.Date.IsZero() {
		payment.Date = time.Now()
	}

	classIDs, err := json.Marshal(nonNil(payment.ClassIDs))
	if err != nil {
		return nil, fmt.Errorf("sqlite: encoding class ids: %w", err)
	}
	enrollmentIDs, err := json.Marshal(nonNil(payment.EnrollmentIDs))
	if err != nil {
		return nil, fmt.Errorf("sqlite: encoding enrollment ids: %w", err)
	}

	_, err = p.conn.ExecContext(ctx,
		`INSERT INTO payments (id, email, transaction_id, amount, class_ids, enrollment_ids, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.Email,
		payment.TransactionID,
		payment.Amount,
		string(classIDs),
		string(enrollmentIDs),
		payment.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting payment: %w", err)
	}
	return &model.InsertResult{Acknowledged: true, InsertedID: payment.ID}, nil
}

func (p *PaymentDB) ListByEmail(ctx context.Context, email string) ([]model.Payment, error) {
	rows, err := p.conn.QueryContext(ctx,
		`SELECT id, email, transaction_id, amount, class_ids, enrollment_ids, date
		 FROM payments WHERE email = ? ORDER BY date DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing payments for %s: %w", email, err)
	}
	defer rows.Close()

	payments := []model.Payment{}
	for rows.Next() {
		var (
			payment                 model.Payment
			classIDs, enrollmentIDs string
		)
		if err := rows.Scan(
			&payment.ID,
			&payment.Email,
			&payment.TransactionID,
			&payment.Amount,
			&classIDs,
			&enrollmentIDs,
			&payment.Date,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning payment row: %w", err)
		}
		if err := json.Unmarshal([]byte(classIDs), &payment.ClassIDs); err != nil {
			return nil, fmt.Errorf("sqlite: decoding class ids of payment %s: %w", payment.ID, err)
		}
		if err := json.Unmarshal([]byte(enrollmentIDs), &payment.EnrollmentIDs); err != nil {
			return nil, fmt.Errorf("sqlite: decoding enrollment ids of payment %s: %w", payment.ID, err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating payments: %w", err)
	}
	return payments, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
