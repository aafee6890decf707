package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/repository"
)

var _ repository.ListingRepository = (*ListingCollection)(nil)

type listingDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	ClassName       string             `bson:"className"`
	Image           string             `bson:"image,omitempty"`
	InstructorName  string             `bson:"instructorName,omitempty"`
	InstructorEmail string             `bson:"instructorEmail,omitempty"`
	Price           float64            `bson:"price"`
	Seat            int                `bson:"seat"`
	Enrolled        int                `bson:"enrolled"`
	Status          string             `bson:"status"`
	Feedback        string             `bson:"feedback,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
}

func (d listingDoc) model() model.ClassListing {
	return model.ClassListing{
		ID:              d.ID.Hex(),
		ClassName:       d.ClassName,
		Image:           d.Image,
		InstructorName:  d.InstructorName,
		InstructorEmail: d.InstructorEmail,
		Price:           d.Price,
		Seat:            d.Seat,
		Enrolled:        d.Enrolled,
		Status:          model.ListingStatus(d.Status),
		Feedback:        d.Feedback,
		CreatedAt:       d.CreatedAt,
	}
}

// ListingCollection is the "instructors" collection.
type ListingCollection struct {
	coll *mongo.Collection
}

func (l *ListingCollection) Create(ctx context.Context, listing *model.ClassListing) (*model.InsertResult, error) {
	doc := listingDoc{
		ID:              primitive.NewObjectID(),
		ClassName:       listing.ClassName,
		Image:           listing.Image,
		InstructorName:  listing.InstructorName,
		InstructorEmail: listing.InstructorEmail,
		Price:           listing.Price,
		Seat:            listing.Seat,
		Enrolled:        listing.Enrolled,
		Status:          string(listing.Status),
		Feedback:        listing.Feedback,
		CreatedAt:       now(),
	}
	res, err := l.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("mongo: inserting listing: %w", err)
	}
	listing.ID = doc.ID.Hex()
	listing.CreatedAt = doc.CreatedAt
	return insertResult(res), nil
}

func (l *ListingCollection) GetByID(ctx context.Context, id string) (*model.ClassListing, error) {
	var doc listingDoc
	if err := findByID(ctx, l.coll, "class listing", id, &doc); err != nil {
		return nil, err
	}
	listing := doc.model()
	return &listing, nil
}

func (l *ListingCollection) List(ctx context.Context, opts repository.ListOptions) ([]model.ClassListing, error) {
	cur, err := l.coll.Find(ctx, bson.M{}, findOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("mongo: finding listings: %w", err)
	}
	var docs []listingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decoding listings: %w", err)
	}
	listings := make([]model.ClassListing, 0, len(docs))
	for _, d := range docs {
		listings = append(listings, d.model())
	}
	return listings, nil
}

func (l *ListingCollection) UpdateDetails(ctx context.Context, id string, changes model.ListingChanges) (*model.UpdateResult, error) {
	return setByID(ctx, l.coll, "class listing", id, bson.M{"$set": bson.M{
		"className": changes.ClassName,
		"price":     changes.Price,
		"seat":      changes.Seat,
	}})
}

func (l *ListingCollection) SetStatus(ctx context.Context, id string, status model.ListingStatus) (*model.UpdateResult, error) {
	return setByID(ctx, l.coll, "class listing", id, bson.M{"$set": bson.M{"status": string(status)}})
}

func (l *ListingCollection) SetFeedback(ctx context.Context, id, feedback string) (*model.UpdateResult, error) {
	return setByID(ctx, l.coll, "class listing", id, bson.M{"$set": bson.M{"feedback": feedback}})
}
