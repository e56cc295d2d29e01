package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/shopease/app/models"
)

func TestProductQuery(t *testing.T) {
	min, max := 10.0, 50.0
	q := productQuery(ProductFilter{
		Category: "Shoes",
		Search:   "a.b",
		MinPrice: &min,
		MaxPrice: &max,
		InStock:  true,
	})

	assert.Equal(t, "Shoes", q["category"])
	assert.NotContains(t, q, "brand")
	assert.Equal(t, bson.M{"$gte": 10.0, "$lte": 50.0}, q["price"])
	assert.Equal(t, bson.M{"$gt": 0}, q["stock"])

	or := q["$or"].(bson.A)
	assert.Equal(t, bson.M{"name": bson.M{"$regex": `a\.b`, "$options": "i"}}, or[0])
}

func TestProductQuery_Empty(t *testing.T) {
	assert.Empty(t, productQuery(ProductFilter{Search: "   "}))
}

func TestProductSort(t *testing.T) {
	assert.Equal(t, "createdAt", productSort("")[0].Key)
	assert.Equal(t, bson.E{Key: "price", Value: 1}, productSort(SortPriceLow)[0])
	assert.Equal(t, bson.E{Key: "price", Value: -1}, productSort(SortPriceHigh)[0])
	assert.Len(t, productSort(SortPopular), 3)
}

func TestOrderQuery(t *testing.T) {
	assert.Empty(t, orderQuery(OrderFilter{}))
	assert.Equal(t, bson.M{"status": models.StatusShipped}, orderQuery(OrderFilter{Status: models.StatusShipped}))
}

func TestPageOptions(t *testing.T) {
	o := pageOptions(3, 8)
	assert.EqualValues(t, 16, *o.Skip)
	assert.EqualValues(t, 8, *o.Limit)
	assert.EqualValues(t, 0, *pageOptions(0, 8).Skip)
}
