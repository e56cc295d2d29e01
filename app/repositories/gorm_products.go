package repositories

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/pkg/orm"
)

type gormProducts struct {
	db *gorm.DB
}

func (r *gormProducts) q(ctx context.Context) *orm.Query {
	return orm.From(r.db).WithContext(ctx).Model(&models.Product{})
}

func (r *gormProducts) Create(ctx context.Context, p *models.Product) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *gormProducts) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.q(ctx).Where("id = ?", id).First(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *gormProducts) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	var out []models.Product
	if len(ids) == 0 {
		return out, nil
	}
	err := r.q(ctx).Where("id IN ?", ids).Get(&out)
	return out, translate(err)
}

func (r *gormProducts) FindByName(ctx context.Context, name string) (*models.Product, error) {
	var p models.Product
	if err := r.q(ctx).Where("name = ?", name).First(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *gormProducts) Update(ctx context.Context, id string, changes ProductChanges) error {
	p := models.Product{ID: id, UpdatedAt: time.Now().UTC()}
	changes.Apply(&p)

	cols := []string{"UpdatedAt"}
	for _, f := range changes.fields() {
		cols = append(cols, f.field)
	}
	return r.write(r.db.WithContext(ctx), &p, cols)
}

// AddImage appends inside a transaction so the read of the gallery and the
// write of both image columns are one unit. Stock is never touched.
func (r *gormProducts) AddImage(ctx context.Context, id, url string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Product
		if err := tx.Select("id", "images").Where("id = ?", id).First(&cur).Error; err != nil {
			return translate(err)
		}
		p := models.Product{
			ID:        id,
			Image:     url,
			Images:    append(cur.Images, url),
			UpdatedAt: time.Now().UTC(),
		}
		return r.write(tx, &p, []string{"Image", "Images", "UpdatedAt"})
	})
}

// write updates the selected columns of p, including zero values.
func (r *gormProducts) write(db *gorm.DB, p *models.Product, cols []string) error {
	res := db.Model(p).Select(cols).Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.Model(&models.Product{}).Where("id = ?", p.ID).Count(&n).Error; err != nil {
			return translate(err)
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (r *gormProducts) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// likeEscaper makes user input match literally inside a LIKE pattern. '!'
// is the escape character on every dialect; MySQL reads '\' differently.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// productOrder maps a sort key onto an ORDER BY clause. The id tiebreak keeps
// pages stable.
func productOrder(sort string) string {
	switch sort {
	case SortPriceLow:
		return "price asc, id"
	case SortPriceHigh:
		return "price desc, id"
	case SortRating:
		return "rating desc, id"
	case SortPopular:
		return "rating desc, created_at desc, id"
	default:
		return "created_at desc, id"
	}
}

func (r *gormProducts) List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	search := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(f.Search))) + "%"

	q := r.q(ctx).
		WhereIf(f.Category != "", "category = ?", f.Category).
		WhereIf(f.Brand != "", "brand = ?", f.Brand).
		WhereIf(f.Search != "", "(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')", search, search).
		WhereIf(f.MinPrice != nil, "price >= ?", deref(f.MinPrice)).
		WhereIf(f.MaxPrice != nil, "price <= ?", deref(f.MaxPrice)).
		WhereIf(f.InStock, "stock > 0").
		Order(productOrder(f.Sort))

	var out []models.Product
	p, err := q.Paginate(f.Page, f.Limit, &out)
	return out, p.Total, translate(err)
}

func (r *gormProducts) Count(ctx context.Context) (int64, error) {
	return r.q(ctx).Count()
}

func (r *gormProducts) DecrementStock(ctx context.Context, id string, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

func (r *gormProducts) IncrementStock(ctx context.Context, id string, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormProducts) LowStock(ctx context.Context, threshold, limit int) ([]models.Product, error) {
	var out []models.Product
	err := r.q(ctx).Where("stock <= ?", threshold).Order("stock asc, name").Limit(limit).Get(&out)
	return out, translate(err)
}

func (r *gormProducts) Facets(ctx context.Context) (Facets, error) {
	var cats, brands []string
	db := r.db.WithContext(ctx).Model(&models.Product{})
	if err := db.Session(&gorm.Session{}).Distinct().Pluck("category", &cats).Error; err != nil {
		return Facets{}, err
	}
	if err := db.Session(&gorm.Session{}).Distinct().Pluck("brand", &brands).Error; err != nil {
		return Facets{}, err
	}
	return Facets{Categories: sortedUnique(cats), Brands: sortedUnique(brands)}, nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
