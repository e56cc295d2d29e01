package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/pkg/orm"
)

type gormUsers struct {
	db *gorm.DB
}

func (r *gormUsers) q(ctx context.Context) *orm.Query {
	return orm.From(r.db).WithContext(ctx).Model(&models.User{})
}

func (r *gormUsers) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *gormUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.q(ctx).Where("id = ?", id).First(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *gormUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.q(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *gormUsers) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.q(ctx).Where("id IN ?", ids).Get(&users)
	return users, translate(err)
}

func (r *gormUsers) Update(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res := r.db.WithContext(ctx).Model(u).Select("name", "email", "password", "is_admin", "updated_at").Updates(u)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, u.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *gormUsers) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormUsers) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	var users []models.User
	p, err := r.q(ctx).Order("created_at desc, id").Paginate(page, limit, &users)
	return users, p.Total, translate(err)
}

func (r *gormUsers) Count(ctx context.Context) (int64, error) {
	return r.q(ctx).Count()
}
