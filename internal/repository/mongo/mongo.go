// Package mongo implements the repository interfaces on a hosted MongoDB
// deployment, the production store.
//
// Each repository works on its own collection of the same database:
//
//	users            User records (unique email)
//	instructors      class listings submitted by instructors
//	classes          published classes
//	selectedClasses  enrollments
//	payments         recorded payments
//
// Records are decoded into unexported *Doc structs carrying bson tags and a
// primitive.ObjectID, then converted to model types with hex string ids.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sakif/ombliss-yoga/internal/apperror"
	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/repository"
)

const (
	usersCollection       = "users"
	listingsCollection    = "instructors"
	classesCollection     = "classes"
	enrollmentsCollection = "selectedClasses"
	paymentsCollection    = "payments"
)

var _ repository.Store = (*Store)(nil)

// Store owns the client connection. There is one Store per process; main
// builds it and the server closes it on shutdown.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri with the stable v1 server API, verifies the deployment is
// reachable and makes sure the unique email index exists.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connecting: %w", err)
	}

	s := &Store{client: client, db: client.Database(dbName)}
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: pinging %s: %w", dbName, err)
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo: creating users email index: %w", err)
	}
	return nil
}

func (s *Store) Users() repository.UserRepository {
	return &UserCollection{coll: s.db.Collection(usersCollection)}
}

func (s *Store) Listings() repository.ListingRepository {
	return &ListingCollection{coll: s.db.Collection(listingsCollection)}
}

func (s *Store) Classes() repository.ClassRepository {
	return &ClassCollection{coll: s.db.Collection(classesCollection)}
}

func (s *Store) Enrollments() repository.EnrollmentRepository {
	return &EnrollmentCollection{coll: s.db.Collection(enrollmentsCollection)}
}

func (s *Store) Payments() repository.PaymentRepository {
	return &PaymentCollection{coll: s.db.Collection(paymentsCollection)}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo: disconnecting: %w", err)
	}
	return nil
}

// objectID parses a hex id from a URL path. A malformed id is the client's
// mistake, so it surfaces as a validation error rather than a 404.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.ValidationFailed("id", fmt.Sprintf("invalid id %q", id))
	}
	return oid, nil
}

func findOptions(opts repository.ListOptions) *options.FindOptions {
	fo := options.Find()
	if opts.Limit > 0 {
		fo.SetLimit(int64(opts.Limit))
	}
	return fo
}

func insertResult(res *mongo.InsertOneResult) *model.InsertResult {
	out := &model.InsertResult{Acknowledged: true}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		out.InsertedID = oid.Hex()
	}
	return out
}

// setByID runs updateOne({_id}, update) and maps a zero match to NotFound.
func setByID(ctx context.Context, coll *mongo.Collection, resource, id string, update bson.M) (*model.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return nil, fmt.Errorf("mongo: updating %s %s: %w", resource, id, err)
	}
	if res.MatchedCount == 0 {
		return nil, apperror.NotFound(resource, id)
	}
	return &model.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

// findByID decodes the document with the given id into dst.
func findByID(ctx context.Context, coll *mongo.Collection, resource, id string, dst any) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(dst); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperror.NotFound(resource, id)
		}
		return fmt.Errorf("mongo: getting %s %s: %w", resource, id, err)
	}
	return nil
}

func now() time.Time {
	// BSON dates carry millisecond precision; truncate so what we return
	// matches what a later read sees.
	return time.Now().UTC().Truncate(time.Millisecond)
}
