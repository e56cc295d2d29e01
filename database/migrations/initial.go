package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/pkg/migration"
	"github.com/shashiranjanraj/shopease/pkg/queue"
)

func init() {
	migration.Register("20260101000000_create_users_table", &CreateUsersTable{})
	migration.Register("20260101000001_create_products_table", &CreateProductsTable{})
	migration.Register("20260101000002_create_orders_table", &CreateOrdersTable{})
	migration.Register("20260101000003_create_failed_jobs_table", &CreateFailedJobsTable{})
}

// -------- 0001: users --------

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}

// -------- 0002: products --------

type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}

// -------- 0003: orders + order_items --------

type CreateOrdersTable struct{}

func (m *CreateOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{}, &models.OrderItem{})
}

func (m *CreateOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_items", "orders")
}

// -------- 0004: failed_jobs --------

type CreateFailedJobsTable struct{}

func (m *CreateFailedJobsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&queue.FailedJobRecord{})
}

func (m *CreateFailedJobsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("failed_jobs")
}
