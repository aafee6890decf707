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

var _ repository.ClassRepository = (*ClassCollection)(nil)

type classDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	ListingID       string             `bson:"listingId,omitempty"`
	ClassName       string             `bson:"className"`
	Image           string             `bson:"image,omitempty"`
	InstructorName  string             `bson:"instructorName,omitempty"`
	InstructorEmail string             `bson:"instructorEmail,omitempty"`
	Price           float64            `bson:"price"`
	Seat            int                `bson:"seat"`
	Enrolled        int                `bson:"enrolled"`
	CreatedAt       time.Time          `bson:"createdAt"`
}

func (d classDoc) model() model.Class {
	return model.Class{
		ID:              d.ID.Hex(),
		ListingID:       d.ListingID,
		ClassName:       d.ClassName,
		Image:           d.Image,
		InstructorName:  d.InstructorName,
		InstructorEmail: d.InstructorEmail,
		Price:           d.Price,
		Seat:            d.Seat,
		Enrolled:        d.Enrolled,
		CreatedAt:       d.CreatedAt,
	}
}

// ClassCollection is the "classes" collection.
type ClassCollection struct {
	coll *mongo.Collection
}

func (c *ClassCollection) Create(ctx context.Context, class *model.Class) (*model.InsertResult, error) {
	doc := classDoc{
		ID:              primitive.NewObjectID(),
		ListingID:       class.ListingID,
		ClassName:       class.ClassName,
		Image:           class.Image,
		InstructorName:  class.InstructorName,
		InstructorEmail: class.InstructorEmail,
		Price:           class.Price,
		Seat:            class.Seat,
		Enrolled:        class.Enrolled,
		CreatedAt:       now(),
	}
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("mongo: inserting class: %w", err)
	}
	class.ID = doc.ID.Hex()
	class.CreatedAt = doc.CreatedAt
	return insertResult(res), nil
}

func (c *ClassCollection) GetByID(ctx context.Context, id string) (*model.Class, error) {
	var doc classDoc
	if err := findByID(ctx, c.coll, "class", id, &doc); err != nil {
		return nil, err
	}
	class := doc.model()
	return &class, nil
}

func (c *ClassCollection) List(ctx context.Context, opts repository.ListOptions) ([]model.Class, error) {
	cur, err := c.coll.Find(ctx, bson.M{}, findOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("mongo: finding classes: %w", err)
	}
	var docs []classDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decoding classes: %w", err)
	}
	classes := make([]model.Class, 0, len(docs))
	for _, d := range docs {
		classes = append(classes, d.model())
	}
	return classes, nil
}

// TakeSeat is a single conditional $inc, so two concurrent payments can never
// push seat below zero.
func (c *ClassCollection) TakeSeat(ctx context.Context, id string) (*model.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	res, err := c.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "seat": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"seat": -1, "enrolled": 1}},
	)
	if err != nil {
		return nil, fmt.Errorf("mongo: taking seat in class %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		if _, err := c.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, apperror.Conflict("class seat", id)
	}
	return &model.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}
