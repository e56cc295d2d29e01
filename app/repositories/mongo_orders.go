package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/shopease/app/models"
)

type mongoOrders struct {
	c *mongo.Collection
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}

func (r *mongoOrders) Create(ctx context.Context, o *models.Order) error {
	o.Prepare()
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	_, err := r.c.InsertOne(ctx, o)
	return translateMongo(err)
}

func (r *mongoOrders) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, translateMongo(err)
	}
	return &o, nil
}

func (r *mongoOrders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return findAll[models.Order](ctx, r.c, bson.M{"userId": userID}, options.Find().SetSort(newestFirst))
}

func (r *mongoOrders) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	filter := orderQuery(f)
	total, err := r.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out, err := findAll[models.Order](ctx, r.c, filter, pageOptions(f.Page, f.Limit).SetSort(newestFirst))
	return out, total, err
}

func (r *mongoOrders) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, at time.Time) error {
	set := bson.M{"status": to, "updatedAt": at}
	if to == models.StatusCancelled {
		set["cancelledAt"] = at
	}
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoOrders) Count(ctx context.Context) (int64, error) {
	return r.c.CountDocuments(ctx, bson.M{})
}

func (r *mongoOrders) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	cur, err := r.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$status"}, {Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	})
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Status models.OrderStatus `bson:"_id"`
		N      int64              `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[models.OrderStatus]int64, len(models.Statuses))
	for _, s := range models.Statuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *mongoOrders) SalesTotal(ctx context.Context) (float64, error) {
	cur, err := r.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "status", Value: bson.D{{Key: "$ne", Value: models.StatusCancelled}}}}}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: nil}, {Key: "total", Value: bson.D{{Key: "$sum", Value: "$totalPrice"}}}}}},
	})
	if err != nil {
		return 0, err
	}
	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (r *mongoOrders) Recent(ctx context.Context, n int) ([]models.Order, error) {
	return findAll[models.Order](ctx, r.c, bson.M{}, options.Find().SetSort(newestFirst).SetLimit(int64(n)))
}

func (r *mongoOrders) PendingOlderThan(ctx context.Context, t time.Time) ([]models.Order, error) {
	filter := bson.M{"status": models.StatusPending, "createdAt": bson.M{"$lt": t}}
	return findAll[models.Order](ctx, r.c, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}
