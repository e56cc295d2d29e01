package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/shopease/app/models"
)

type mongoProducts struct {
	c *mongo.Collection
}

func (r *mongoProducts) Create(ctx context.Context, p *models.Product) error {
	p.Prepare()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.c.InsertOne(ctx, p)
	return translateMongo(err)
}

func (r *mongoProducts) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translateMongo(err)
	}
	return &p, nil
}

func (r *mongoProducts) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	return findAll[models.Product](ctx, r.c, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoProducts) FindByName(ctx context.Context, name string) (*models.Product, error) {
	var p models.Product
	if err := r.c.FindOne(ctx, bson.M{"name": name}).Decode(&p); err != nil {
		return nil, translateMongo(err)
	}
	return &p, nil
}

// Update $sets the changed fields only.
func (r *mongoProducts) Update(ctx context.Context, id string, changes ProductChanges) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for _, f := range changes.fields() {
		set[f.key] = f.value
	}
	return r.updateOne(ctx, id, bson.M{"$set": set})
}

// AddImage uses a pipeline update so a document whose images field is null
// still gets an array.
func (r *mongoProducts) AddImage(ctx context.Context, id, url string) error {
	return r.updateOne(ctx, id, mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"image":     url,
			"updatedAt": time.Now().UTC(),
			"images": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$images", bson.A{}}},
				bson.A{url},
			}},
		}}},
	})
}

func (r *mongoProducts) updateOne(ctx context.Context, id string, update any) error {
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translateMongo(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProducts) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProducts) List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	filter := productQuery(f)
	total, err := r.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out, err := findAll[models.Product](ctx, r.c, filter, pageOptions(f.Page, f.Limit).SetSort(productSort(f.Sort)))
	return out, total, err
}

func (r *mongoProducts) Count(ctx context.Context) (int64, error) {
	return r.c.CountDocuments(ctx, bson.M{})
}

func (r *mongoProducts) DecrementStock(ctx context.Context, id string, qty int) error {
	res, err := r.c.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}, "$set": bson.M{"updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

func (r *mongoProducts) IncrementStock(ctx context.Context, id string, qty int) error {
	res, err := r.c.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"stock": qty}, "$set": bson.M{"updatedAt": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProducts) LowStock(ctx context.Context, threshold, limit int) ([]models.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "stock", Value: 1}, {Key: "name", Value: 1}}).
		SetLimit(int64(limit))
	return findAll[models.Product](ctx, r.c, bson.M{"stock": bson.M{"$lte": threshold}}, opts)
}

func (r *mongoProducts) Facets(ctx context.Context) (Facets, error) {
	distinct := func(field string) ([]string, error) {
		raw, err := r.c.Distinct(ctx, field, bson.M{})
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return sortedUnique(out), nil
	}

	cats, err := distinct("category")
	if err != nil {
		return Facets{}, err
	}
	brands, err := distinct("brand")
	if err != nil {
		return Facets{}, err
	}
	return Facets{Categories: cats, Brands: brands}, nil
}
