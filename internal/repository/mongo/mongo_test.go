package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/sakif/ombliss-yoga/internal/apperror"
	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/repository"
)

// The mock deployment replays queued server replies in order, so each subtest
// queues exactly the replies its driver calls will consume.

func newMockTest(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func storeFor(mt *mtest.T) *Store {
	return &Store{client: mt.Client, db: mt.DB}
}

func TestUserCollection(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("create assigns an object id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &model.User{Name: "Asha", Email: "asha@example.com"}
		res, err := storeFor(mt).Users().Create(context.Background(), user)
		require.NoError(mt, err)

		assert.True(mt, res.Acknowledged)
		assert.Len(mt, user.ID, 24)
		assert.Equal(mt, user.ID, res.InsertedID)
		assert.False(mt, user.CreatedAt.IsZero())
	})

	mt.Run("duplicate email is a conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: yogaDb.users index: email_1",
		}))

		_, err := storeFor(mt).Users().Create(context.Background(), &model.User{Email: "dup@example.com"})
		assert.ErrorIs(mt, err, apperror.ErrConflict)
	})

	mt.Run("get by email decodes the document", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "yogaDb.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "Mira"},
			{Key: "email", Value: "mira@example.com"},
			{Key: "photoURL", Value: "https://example.com/mira.png"},
			{Key: "role", Value: "admin"},
		}))

		user, err := storeFor(mt).Users().GetByEmail(context.Background(), "mira@example.com")
		require.NoError(mt, err)

		assert.Equal(mt, oid.Hex(), user.ID)
		assert.Equal(mt, model.RoleAdmin, user.Role)
		assert.Equal(mt, "https://example.com/mira.png", user.PhotoURL)
	})

	mt.Run("get by email with no match is not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "yogaDb.users", mtest.FirstBatch))

		_, err := storeFor(mt).Users().GetByEmail(context.Background(), "ghost@example.com")
		assert.ErrorIs(mt, err, apperror.ErrNotFound)
	})

	mt.Run("list by role", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "yogaDb.users", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: "a@example.com"}, {Key: "role", Value: "instructor"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: "b@example.com"}, {Key: "role", Value: "instructor"}},
		))

		users, err := storeFor(mt).Users().ListByRole(context.Background(), model.RoleInstructor, repository.ListOptions{Limit: 6})
		require.NoError(mt, err)

		require.Len(mt, users, 2)
		assert.Equal(mt, "b@example.com", users[1].Email)
		assert.Equal(mt, model.RoleInstructor, users[0].Role)
	})

	mt.Run("empty list is an empty slice", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "yogaDb.users", mtest.FirstBatch))

		users, err := storeFor(mt).Users().List(context.Background(), repository.ListOptions{})
		require.NoError(mt, err)
		assert.NotNil(mt, users)
		assert.Empty(mt, users)
	})

	mt.Run("set role", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		res, err := storeFor(mt).Users().SetRole(context.Background(), primitive.NewObjectID().Hex(), model.RoleAdmin)
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), res.MatchedCount)
		assert.Equal(mt, int64(1), res.ModifiedCount)
	})

	mt.Run("set role on a missing user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		_, err := storeFor(mt).Users().SetRole(context.Background(), primitive.NewObjectID().Hex(), model.RoleAdmin)
		assert.ErrorIs(mt, err, apperror.ErrNotFound)
	})

	mt.Run("malformed id never reaches the server", func(mt *mtest.T) {
		_, err := storeFor(mt).Users().SetRole(context.Background(), "not-an-object-id", model.RoleAdmin)
		assert.ErrorIs(mt, err, apperror.ErrValidation)
	})
}

func TestListingCollection(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("get by id", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "yogaDb.instructors", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "className", Value: "Sunrise Flow"},
			{Key: "price", Value: 25.5},
			{Key: "seat", Value: 12},
			{Key: "status", Value: "approved"},
		}))

		listing, err := storeFor(mt).Listings().GetByID(context.Background(), oid.Hex())
		require.NoError(mt, err)

		assert.Equal(mt, "Sunrise Flow", listing.ClassName)
		assert.Equal(mt, 25.5, listing.Price)
		assert.Equal(mt, 12, listing.Seat)
		assert.Equal(mt, model.StatusApproved, listing.Status)
	})

	mt.Run("set status on a missing listing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		_, err := storeFor(mt).Listings().SetStatus(context.Background(), primitive.NewObjectID().Hex(), model.StatusDenied)
		assert.ErrorIs(mt, err, apperror.ErrNotFound)
	})

	mt.Run("set feedback", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		res, err := storeFor(mt).Listings().SetFeedback(context.Background(), primitive.NewObjectID().Hex(), "needs a warmup")
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), res.ModifiedCount)
	})
}

func TestClassCollection(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("take seat", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		res, err := storeFor(mt).Classes().TakeSeat(context.Background(), primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), res.ModifiedCount)
	})

	mt.Run("take seat in a full class", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
			mtest.CreateCursorResponse(0, "yogaDb.classes", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: oid},
				{Key: "className", Value: "Yin"},
				{Key: "seat", Value: 0},
				{Key: "enrolled", Value: 20},
			}),
		)

		_, err := storeFor(mt).Classes().TakeSeat(context.Background(), oid.Hex())
		assert.ErrorIs(mt, err, apperror.ErrConflict)
	})

	mt.Run("take seat in a missing class", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
			mtest.CreateCursorResponse(0, "yogaDb.classes", mtest.FirstBatch),
		)

		_, err := storeFor(mt).Classes().TakeSeat(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, apperror.ErrNotFound)
	})
}

func TestEnrollmentCollection(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		res, err := storeFor(mt).Enrollments().Delete(context.Background(), primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), res.DeletedCount)
	})

	mt.Run("mark paid", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		res, err := storeFor(mt).Enrollments().MarkPaid(context.Background(), primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), res.ModifiedCount)
	})

	mt.Run("mark paid twice is a conflict", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
			mtest.CreateCursorResponse(0, "yogaDb.selectedClasses", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: oid},
				{Key: "classId", Value: "c1"},
				{Key: "email", Value: "sam@example.com"},
				{Key: "paid", Value: true},
			}),
		)

		_, err := storeFor(mt).Enrollments().MarkPaid(context.Background(), oid.Hex())
		assert.ErrorIs(mt, err, apperror.ErrConflict)
	})

	mt.Run("mark paid on a missing enrollment", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
			mtest.CreateCursorResponse(0, "yogaDb.selectedClasses", mtest.FirstBatch),
		)

		_, err := storeFor(mt).Enrollments().MarkPaid(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, apperror.ErrNotFound)
	})

	mt.Run("delete a missing enrollment", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		_, err := storeFor(mt).Enrollments().Delete(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, apperror.ErrNotFound)
	})

	mt.Run("list by email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "yogaDb.selectedClasses", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "classId", Value: "c1"},
				{Key: "email", Value: "sam@example.com"},
				{Key: "paid", Value: true},
			},
		))

		enrollments, err := storeFor(mt).Enrollments().ListByEmail(context.Background(), "sam@example.com")
		require.NoError(mt, err)
		require.Len(mt, enrollments, 1)
		assert.True(mt, enrollments[0].Paid)
		assert.Equal(mt, "c1", enrollments[0].ClassID)
	})
}

func TestPaymentCollection(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("create defaults the date", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		p := &model.Payment{Email: "sam@example.com", TransactionID: "pi_1", Amount: 20}
		_, err := storeFor(mt).Payments().Create(context.Background(), p)
		require.NoError(mt, err)
		assert.False(mt, p.Date.IsZero())
		assert.NotEmpty(mt, p.ID)
	})

	mt.Run("list decodes missing id arrays as empty", func(mt *mtest.T) {
		date := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "yogaDb.payments", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "email", Value: "sam@example.com"},
			{Key: "transactionId", Value: "pi_9"},
			{Key: "price", Value: 45.0},
			{Key: "date", Value: date},
		}))

		payments, err := storeFor(mt).Payments().ListByEmail(context.Background(), "sam@example.com")
		require.NoError(mt, err)
		require.Len(mt, payments, 1)
		assert.Equal(mt, 45.0, payments[0].Amount)
		assert.True(mt, payments[0].Date.Equal(date))
		assert.NotNil(mt, payments[0].ClassIDs)
	})
}

func TestStorePing(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("ping", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		assert.NoError(mt, storeFor(mt).Ping(context.Background()))
	})
}
