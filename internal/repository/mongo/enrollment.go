package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sakif/ombliss-yoga/internal/apperror"
	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/repository"
)

var _ repository.EnrollmentRepository = (*EnrollmentCollection)(nil)

type enrollmentDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ClassID   string             `bson:"classId"`
	ClassName string             `bson:"className,omitempty"`
	Price     float64            `bson:"price"`
	Email     string             `bson:"email"`
	Paid      bool               `bson:"paid"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d enrollmentDoc) model() model.Enrollment {
	return model.Enrollment{
		ID:        d.ID.Hex(),
		ClassID:   d.ClassID,
		ClassName: d.ClassName,
		Price:     d.Price,
		Email:     d.Email,
		Paid:      d.Paid,
		CreatedAt: d.CreatedAt,
	}
}

// EnrollmentCollection is the "selectedClasses" collection.
type EnrollmentCollection struct {
	coll *mongo.Collection
}

func (e *EnrollmentCollection) Create(ctx context.Context, enrollment *model.Enrollment) (*model.InsertResult, error) {
	doc := enrollmentDoc{
		ID:        primitive.NewObjectID(),
		ClassID:   enrollment.ClassID,
		ClassName: enrollment.ClassName,
		Price:     enrollment.Price,
		Email:     enrollment.Email,
		Paid:      enrollment.Paid,
		CreatedAt: now(),
	}
	res, err := e.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("mongo: inserting enrollment: %w", err)
	}
	enrollment.ID = doc.ID.Hex()
	enrollment.CreatedAt = doc.CreatedAt
	return insertResult(res), nil
}

func (e *EnrollmentCollection) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var doc enrollmentDoc
	if err := findByID(ctx, e.coll, "enrollment", id, &doc); err != nil {
		return nil, err
	}
	enrollment := doc.model()
	return &enrollment, nil
}

func (e *EnrollmentCollection) ListByEmail(ctx context.Context, email string) ([]model.Enrollment, error) {
	cur, err := e.coll.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("mongo: finding enrollments for %s: %w", email, err)
	}
	var docs []enrollmentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decoding enrollments: %w", err)
	}
	enrollments := make([]model.Enrollment, 0, len(docs))
	for _, d := range docs {
		enrollments = append(enrollments, d.model())
	}
	return enrollments, nil
}

// MarkPaid flips paid to true only if it was not set yet, so two payments
// naming the same enrollment cannot both count it.
func (e *EnrollmentCollection) MarkPaid(ctx context.Context, id string) (*model.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	res, err := e.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "paid": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"paid": true}},
	)
	if err != nil {
		return nil, fmt.Errorf("mongo: marking enrollment %s paid: %w", id, err)
	}
	if res.MatchedCount == 0 {
		if _, err := e.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, apperror.Conflict("enrollment payment", id)
	}
	return &model.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

func (e *EnrollmentCollection) Delete(ctx context.Context, id string) (*model.DeleteResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	res, err := e.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("mongo: deleting enrollment %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return nil, apperror.NotFound("enrollment", id)
	}
	return &model.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}
