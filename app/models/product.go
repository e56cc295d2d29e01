package models

import (
	"time"

	"gorm.io/gorm"
)

// Spec is one name/value row of a product's specification table.
type Spec struct {
	Name  string `json:"name"  bson:"name"`
	Value string `json:"value" bson:"value"`
}

// Product represents a product in the catalogue.
type Product struct {
	ID             string    `gorm:"primaryKey;size:36"                  json:"_id"                     bson:"_id"`
	Name           string    `gorm:"size:255;not null;index"             json:"name"                    bson:"name"`
	Description    string    `gorm:"type:text"                           json:"description"             bson:"description"`
	Price          float64   `gorm:"not null;default:0"                  json:"price"                   bson:"price"`
	OriginalPrice  *float64  `                                           json:"originalPrice,omitempty" bson:"originalPrice,omitempty"`
	Image          string    `gorm:"size:1024"                           json:"image"                   bson:"image"`
	Images         []string  `gorm:"serializer:json"                     json:"images"                  bson:"images"`
	Category       string    `gorm:"size:100;index:idx_products_catalog" json:"category"                bson:"category"`
	Brand          string    `gorm:"size:100;index:idx_products_catalog" json:"brand"                   bson:"brand"`
	Stock          int       `gorm:"not null;default:0"                  json:"stock"                   bson:"stock"`
	Rating         float64   `gorm:"not null;default:0"                  json:"rating"                  bson:"rating"`
	Features       []string  `gorm:"serializer:json"                     json:"features"                bson:"features"`
	Specifications []Spec    `gorm:"serializer:json"                     json:"specifications"          bson:"specifications"`
	CreatedAt      time.Time `gorm:"index"                               json:"createdAt"               bson:"createdAt"`
	UpdatedAt      time.Time `                                           json:"updatedAt"               bson:"updatedAt"`
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool { return p.Stock > 0 }

// Prepare fills the id of a product about to be inserted.
func (p *Product) Prepare() {
	if p.ID == "" {
		p.ID = NewID()
	}
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	p.Prepare()
	return nil
}
