package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sakif/ombliss-yoga/internal/apperror"
	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/repository"
)

var _ repository.UserRepository = (*UserCollection)(nil)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PhotoURL     string             `bson:"photoURL,omitempty"`
	Role         string             `bson:"role,omitempty"`
	PasswordHash string             `bson:"passwordHash,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d userDoc) model() model.User {
	return model.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PhotoURL:     d.PhotoURL,
		Role:         model.Role(d.Role),
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

// UserCollection is the "users" collection.
type UserCollection struct {
	coll *mongo.Collection
}

func (u *UserCollection) Create(ctx context.Context, user *model.User) (*model.InsertResult, error) {
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Name:         user.Name,
		Email:        user.Email,
		PhotoURL:     user.PhotoURL,
		Role:         string(user.Role),
		PasswordHash: user.PasswordHash,
		CreatedAt:    now(),
	}
	res, err := u.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperror.Conflict("user", user.Email)
		}
		return nil, fmt.Errorf("mongo: inserting user %s: %w", user.Email, err)
	}
	user.ID = doc.ID.Hex()
	user.CreatedAt = doc.CreatedAt
	return insertResult(res), nil
}

func (u *UserCollection) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var doc userDoc
	if err := u.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("mongo: getting user %s: %w", email, err)
	}
	user := doc.model()
	return &user, nil
}

func (u *UserCollection) List(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	return u.find(ctx, bson.M{}, opts)
}

func (u *UserCollection) ListByRole(ctx context.Context, role model.Role, opts repository.ListOptions) ([]model.User, error) {
	return u.find(ctx, bson.M{"role": string(role)}, opts)
}

func (u *UserCollection) SetRole(ctx context.Context, id string, role model.Role) (*model.UpdateResult, error) {
	return setByID(ctx, u.coll, "user", id, bson.M{"$set": bson.M{"role": string(role)}})
}

func (u *UserCollection) find(ctx context.Context, filter bson.M, opts repository.ListOptions) ([]model.User, error) {
	cur, err := u.coll.Find(ctx, filter, findOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("mongo: finding users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decoding users: %w", err)
	}
	users := make([]model.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.model())
	}
	return users, nil
}
