package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/repository"
)

var _ repository.PaymentRepository = (*PaymentCollection)(nil)

type paymentDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Email         string             `bson:"email"`
	TransactionID string             `bson:"transactionId"`
	Amount        float64            `bson:"price"`
	ClassIDs      []string           `bson:"classIds"`
	EnrollmentIDs []string           `bson:"enrollmentIds"`
	Date          time.Time          `bson:"date"`
}

func (d paymentDoc) model() model.Payment {
	return model.Payment{
		ID:            d.ID.Hex(),
		Email:         d.Email,
		TransactionID: d.TransactionID,
		Amount:        d.Amount,
		ClassIDs:      orEmpty(d.ClassIDs),
		EnrollmentIDs: orEmpty(d.EnrollmentIDs),
		Date:          d.Date,
	}
}

// orEmpty keeps a missing array from encoding as JSON null.
func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// PaymentCollection is the "payments" collection.
type PaymentCollection struct {
	coll *mongo.Collection
}

func (p *PaymentCollection) Create(ctx context.Context, payment *model.Payment) (*model.InsertResult, error) {
	if payment.Date.IsZero() {
		payment.Date = now()
	}
	doc := paymentDoc{
		ID:            primitive.NewObjectID(),
		Email:         payment.Email,
		TransactionID: payment.TransactionID,
		Amount:        payment.Amount,
		ClassIDs:      payment.ClassIDs,
		EnrollmentIDs: payment.EnrollmentIDs,
		Date:          payment.Date,
	}
	res, err := p.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("mongo: inserting payment: %w", err)
	}
	payment.ID = doc.ID.Hex()
	return insertResult(res), nil
}

func (p *PaymentCollection) ListByEmail(ctx context.Context, email string) ([]model.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := p.coll.Find(ctx, bson.M{"email": email}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: finding payments for %s: %w", email, err)
	}
	var docs []paymentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decoding payments: %w", err)
	}
	payments := make([]model.Payment, 0, len(docs))
	for _, d := range docs {
		payments = append(payments, d.model())
	}
	return payments, nil
}
