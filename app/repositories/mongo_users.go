package repositories

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/shopease/app/models"
)

type mongoUsers struct {
	c *mongo.Collection
}

func (r *mongoUsers) Create(ctx context.Context, u *models.User) error {
	u.Prepare()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := r.c.InsertOne(ctx, u)
	return translateMongo(err)
}

func (r *mongoUsers) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translateMongo(err)
	}
	return &u, nil
}

func (r *mongoUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *mongoUsers) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return findAll[models.User](ctx, r.c, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoUsers) Update(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.UpdatedAt = time.Now().UTC()
	res, err := r.c.UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{
		"name":      u.Name,
		"email":     u.Email,
		"password":  u.Password,
		"isAdmin":   u.IsAdmin,
		"updatedAt": u.UpdatedAt,
	}})
	if err != nil {
		return translateMongo(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUsers) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUsers) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	total, err := r.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := pageOptions(page, limit).SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	users, err := findAll[models.User](ctx, r.c, bson.M{}, opts)
	return users, total, err
}

func (r *mongoUsers) Count(ctx context.Context) (int64, error) {
	return r.c.EstimatedDocumentCount(ctx, options.EstimatedDocumentCount())
}
