package repositories

import (
	"github.com/shashiranjanraj/shopease/app/models"
)

// ProductChanges lists the product fields an update writes. Nil fields are
// left as they are in the store; stock in particular is only written when
// Stock is set, so reservations made since the caller's read survive.
type ProductChanges struct {
	Name           *string
	Description    *string
	Price          *float64
	OriginalPrice  *float64
	Image          *string
	Images         *[]string
	Category       *string
	Brand          *string
	Stock          *int
	Rating         *float64
	Features       *[]string
	Specifications *[]models.Spec
}

// changedField is one set field: its Go name (used by GORM's Select), its
// document key and the value to store.
type changedField struct {
	field string
	key   string
	value any
}

func (c ProductChanges) fields() []changedField {
	var out []changedField
	add := func(field, key string, v any) {
		out = append(out, changedField{field: field, key: key, value: v})
	}
	if c.Name != nil {
		add("Name", "name", *c.Name)
	}
	if c.Description != nil {
		add("Description", "description", *c.Description)
	}
	if c.Price != nil {
		add("Price", "price", *c.Price)
	}
	if c.OriginalPrice != nil {
		add("OriginalPrice", "originalPrice", *c.OriginalPrice)
	}
	if c.Image != nil {
		add("Image", "image", *c.Image)
	}
	if c.Images != nil {
		add("Images", "images", *c.Images)
	}
	if c.Category != nil {
		add("Category", "category", *c.Category)
	}
	if c.Brand != nil {
		add("Brand", "brand", *c.Brand)
	}
	if c.Stock != nil {
		add("Stock", "stock", *c.Stock)
	}
	if c.Rating != nil {
		add("Rating", "rating", *c.Rating)
	}
	if c.Features != nil {
		add("Features", "features", *c.Features)
	}
	if c.Specifications != nil {
		add("Specifications", "specifications", *c.Specifications)
	}
	return out
}

// Apply copies the set fields onto p.
func (c ProductChanges) Apply(p *models.Product) {
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Description != nil {
		p.Description = *c.Description
	}
	if c.Price != nil {
		p.Price = *c.Price
	}
	if c.OriginalPrice != nil {
		v := *c.OriginalPrice
		p.OriginalPrice = &v
	}
	if c.Image != nil {
		p.Image = *c.Image
	}
	if c.Images != nil {
		p.Images = *c.Images
	}
	if c.Category != nil {
		p.Category = *c.Category
	}
	if c.Brand != nil {
		p.Brand = *c.Brand
	}
	if c.Stock != nil {
		p.Stock = *c.Stock
	}
	if c.Rating != nil {
		p.Rating = *c.Rating
	}
	if c.Features != nil {
		p.Features = *c.Features
	}
	if c.Specifications != nil {
		p.Specifications = *c.Specifications
	}
}
