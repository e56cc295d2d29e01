package repositories

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
	ordersCollection   = "orders"
)

// NewMongo returns the document-store repositories over db.
func NewMongo(db *mongo.Database) *Repositories {
	return &Repositories{
		Users:    &mongoUsers{c: db.Collection(usersCollection)},
		Products: &mongoProducts{c: db.Collection(productsCollection)},
		Orders:   &mongoOrders{c: db.Collection(ordersCollection)},
	}
}

// EnsureIndexes creates the indexes the queries rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "brand", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for name, idx := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

func translateMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}

// productQuery builds the find filter for a catalog listing.
func productQuery(f ProductFilter) bson.M {
	q := bson.M{}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Brand != "" {
		q["brand"] = f.Brand
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		re := bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
		q["$or"] = bson.A{bson.M{"name": re}, bson.M{"description": re}}
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		q["price"] = price
	}
	if f.InStock {
		q["stock"] = bson.M{"$gt": 0}
	}
	return q
}

// productSort mirrors productOrder for the document store.
func productSort(sort string) bson.D {
	switch sort {
	case SortPriceLow:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case SortPriceHigh:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	case SortRating:
		return bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}}
	case SortPopular:
		return bson.D{{Key: "rating", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	}
}

func orderQuery(f OrderFilter) bson.M {
	if f.Status == "" {
		return bson.M{}
	}
	return bson.M{"status": f.Status}
}

// pageOptions converts page/limit into skip/limit find options.
func pageOptions(page, limit int) *options.FindOptions {
	if page < 1 {
		page = 1
	}
	return options.Find().SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
}

func findAll[T any](ctx context.Context, c *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cur, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

