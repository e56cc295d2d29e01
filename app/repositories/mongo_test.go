package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/app/repositories"
)

// The document-store repositories run against the driver's mock deployment:
// each test queues the server replies, then checks the result and the
// command that was sent.

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func updated(n int) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
}

func found(ns string, docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, docs...)
}

func TestMongoProducts_DecrementStock(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("reserves when enough stock", func(mt *mtest.T) {
		repos := repositories.NewMongo(mt.DB)
		mt.AddMockResponses(updated(1))

		require.NoError(mt, repos.Products.DecrementStock(ctx, "p1", 3))

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "p1", cmd.Lookup("updates", "0", "q", "_id").StringValue())
		assert.EqualValues(mt, 3, cmd.Lookup("updates", "0", "q", "stock", "$gte").AsInt64())
		assert.EqualValues(mt, -3, cmd.Lookup("updates", "0", "u", "$inc", "stock").AsInt64())
	})

	mt.Run("insufficient when the guard does not match", func(mt *mtest.T) {
		repos := repositories.NewMongo(mt.DB)
		mt.AddMockResponses(
			updated(0),
			found("shop.products", bson.D{{Key: "_id", Value: "p1"}, {Key: "name", Value: "Lamp"}, {Key: "stock", Value: 1}}),
		)

		err := repos.Products.DecrementStock(ctx, "p1", 3)
		assert.ErrorIs(mt, err, repositories.ErrInsufficientStock)
	})

	mt.Run("not found when the product is gone", func(mt *mtest.T) {
		repos := repositories.NewMongo(mt.DB)
		mt.AddMockResponses(updated(0), found("shop.products"))

		err := repos.Products.DecrementStock(ctx, "missing", 1)
		assert.ErrorIs(mt, err, repositories.ErrNotFound)
	})
}

func TestMongoProducts_UpdateSetsOnlyChangedFields(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("name only", func(mt *mtest.T) {
		repos := repositories.NewMongo(mt.DB)
		mt.AddMockResponses(updated(1))

		name := "Widget v2"
		require.NoError(mt, repos.Products.Update(ctx, "p1", repositories.ProductChanges{Name: &name}))

		set := mt.GetStartedEvent().Command.Lookup("updates", "0", "u", "$set").Document()
		assert.Equal(mt, "Widget v2", set.Lookup("name").StringValue())
		_, err := set.LookupErr("stock")
		assert.Error(mt, err, "stock must not be written by a name-only patch")
		_, err = set.LookupErr("updatedAt")
		assert.NoError(mt, err)
	})

	mt.Run("missing product", func(mt *mtest.T) {
		repos := repositories.NewMongo(mt.DB)
		mt.AddMockResponses(updated(0))

		stock := 4
		err := repos.Products.Update(ctx, "missing", repositories.ProductChanges{Stock: &stock})
		assert.ErrorIs(mt, err, repositories.ErrNotFound)
	})

	mt.Run("add image appends without touching stock", func(mt *mtest.T) {
		repos := repositories.NewMongo(mt.DB)
		mt.AddMockResponses(updated(1))

		require.NoError(mt, repos.Products.AddImage(ctx, "p1", "http://img/a.png"))

		set := mt.GetStartedEvent().Command.Lookup("updates", "0", "u", "0", "$set").Document()
		assert.Equal(mt, "http://img/a.png", set.Lookup("image").StringValue())
		_, err := set.LookupErr("images", "$concatArrays")
		assert.NoError(mt, err)
		_, err = set.LookupErr("stock")
		assert.Error(mt, err)
	})
}

func TestMongoUsers_DuplicateEmail(t *testing.T) {
	mt := newMock(t)

	mt.Run("duplicate key maps to ErrDuplicate", func(mt *mtest.T) {
		repos := repositories.NewMongo(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: shop.users index: email_1",
		}))

		u := &models.User{Name: "Ada", Email: " Ada@Example.com ", Password: "hash"}
		err := repos.Users.Create(context.Background(), u)
		assert.ErrorIs(mt, err, repositories.ErrDuplicate)
		assert.NotEmpty(mt, u.ID)
		assert.Equal(mt, "ada@example.com", u.Email)
	})

	mt.Run("missing user maps to ErrNotFound", func(mt *mtest.T) {
		repos := repositories.NewMongo(mt.DB)
		mt.AddMockResponses(found("shop.users"))

		_, err := repos.Users.FindByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(mt, err, repositories.ErrNotFound)
	})
}

func TestMongoOrders_UpdateStatus(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("moves from the expected status", func(mt *mtest.T) {
		repos := repositories.NewMongo(mt.DB)
		mt.AddMockResponses(updated(1))

		require.NoError(mt, repos.Orders.UpdateStatus(ctx, "o1", models.StatusPending, models.StatusCancelled, at))

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "Pending", cmd.Lookup("updates", "0", "q", "status").StringValue())
		assert.Equal(mt, "Cancelled", cmd.Lookup("updates", "0", "u", "$set", "status").StringValue())
		_, err := cmd.LookupErr("updates", "0", "u", "$set", "cancelledAt")
		assert.NoError(mt, err)
	})

	mt.Run("no match is not found", func(mt *mtest.T) {
		repos := repositories.NewMongo(mt.DB)
		mt.AddMockResponses(updated(0))

		err := repos.Orders.UpdateStatus(ctx, "o1", models.StatusPending, models.StatusShipped, at)
		assert.ErrorIs(mt, err, repositories.ErrNotFound)

		cmd := mt.GetStartedEvent().Command
		_, err = cmd.LookupErr("updates", "0", "u", "$set", "cancelledAt")
		assert.Error(mt, err)
	})
}

func TestMongoOrders_Aggregates(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("count by status fills missing statuses", func(mt *mtest.T) {
		repos := repositories.NewMongo(mt.DB)
		mt.AddMockResponses(found("shop.orders",
			bson.D{{Key: "_id", Value: "Pending"}, {Key: "n", Value: int64(2)}},
			bson.D{{Key: "_id", Value: "Delivered"}, {Key: "n", Value: int64(1)}},
		))

		got, err := repos.Orders.CountByStatus(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, map[models.OrderStatus]int64{
			models.StatusPending:    2,
			models.StatusProcessing: 0,
			models.StatusShipped:    0,
			models.StatusDelivered:  1,
			models.StatusCancelled:  0,
		}, got)
	})

	mt.Run("sales total excludes cancelled", func(mt *mtest.T) {
		repos := repositories.NewMongo(mt.DB)
		mt.AddMockResponses(found("shop.orders", bson.D{{Key: "_id", Value: nil}, {Key: "total", Value: 123.5}}))

		total, err := repos.Orders.SalesTotal(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, 123.5, total)

		match := mt.GetStartedEvent().Command.Lookup("pipeline", "0", "$match", "status", "$ne")
		assert.Equal(mt, "Cancelled", match.StringValue())
	})

	mt.Run("sales total of no orders is zero", func(mt *mtest.T) {
		repos := repositories.NewMongo(mt.DB)
		mt.AddMockResponses(found("shop.orders"))

		total, err := repos.Orders.SalesTotal(ctx)
		require.NoError(mt, err)
		assert.Zero(mt, total)
	})
}
