package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/pkg/orm"
)

type gormOrders struct {
	db *gorm.DB
}

func (r *gormOrders) q(ctx context.Context) *orm.Query {
	return orm.From(r.db).WithContext(ctx).Model(&models.Order{}).Preload("Products")
}

// Create inserts the order and its items together.
func (r *gormOrders) Create(ctx context.Context, o *models.Order) error {
	return translate(r.db.WithContext(ctx).Create(o).Error)
}

func (r *gormOrders) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := r.q(ctx).Where("id = ?", id).First(&o); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *gormOrders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var out []models.Order
	err := r.q(ctx).Where("user_id = ?", userID).Order("created_at desc, id").Get(&out)
	return out, translate(err)
}

// List counts without the item preload, then attaches items to the page.
func (r *gormOrders) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	var out []models.Order
	p, err := orm.From(r.db).WithContext(ctx).Model(&models.Order{}).
		WhereIf(f.Status != "", "status = ?", f.Status).
		Order("created_at desc, id").
		Paginate(f.Page, f.Limit, &out)
	if err != nil {
		return nil, 0, translate(err)
	}
	if err := r.attachItems(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, p.Total, nil
}

func (r *gormOrders) attachItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}

	var items []models.OrderItem
	if err := orm.From(r.db).WithContext(ctx).Where("order_id IN ?", ids).Order("id").Get(&items); err != nil {
		return err
	}
	byOrder := make(map[string][]models.OrderItem, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	for i := range orders {
		orders[i].Products = byOrder[orders[i].ID]
	}
	return nil
}

func (r *gormOrders) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, at time.Time) error {
	changes := map[string]interface{}{"status": to, "updated_at": at}
	if to == models.StatusCancelled {
		changes["cancelled_at"] = at
	}
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(changes)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormOrders) Count(ctx context.Context) (int64, error) {
	return orm.From(r.db).WithContext(ctx).Model(&models.Order{}).Count()
}

func (r *gormOrders) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	var rows []struct {
		Status models.OrderStatus
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
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

func (r *gormOrders) SalesTotal(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("status <> ?", models.StatusCancelled).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&total).Error
	return total, err
}

func (r *gormOrders) Recent(ctx context.Context, n int) ([]models.Order, error) {
	var out []models.Order
	err := r.q(ctx).Order("created_at desc, id").Limit(n).Get(&out)
	return out, translate(err)
}

func (r *gormOrders) PendingOlderThan(ctx context.Context, t time.Time) ([]models.Order, error) {
	var out []models.Order
	err := r.q(ctx).
		Where("status = ? AND created_at < ?", models.StatusPending, t).
		Order("created_at").
		Get(&out)
	return out, translate(err)
}
