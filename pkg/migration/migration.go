// Package migration runs versioned schema migrations against the SQL store.
//
// Migrations register themselves from database/migrations:
//
//	func init() {
//	    migration.Register("20260101000001_create_products_table", &CreateProductsTable{})
//	}
//
// and are applied by the CLI:
//
//	shopease migrate
//	shopease migrate:rollback
//	shopease migrate:status
package migration

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopease/pkg/logger"
)

// Migration is the interface every migration must implement.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// migrationRecord is the tracking-table row for an applied migration.
type migrationRecord struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (migrationRecord) TableName() string { return "schema_migrations" }

type registered struct {
	name string
	m    Migration
}

var registry []registered

// Register adds a migration. name must be timestamp-prefixed; migrations run
// in name order regardless of registration order.
func Register(name string, m Migration) {
	registry = append(registry, registered{name: name, m: m})
	sort.SliceStable(registry, func(i, j int) bool { return registry[i].name < registry[j].name })
}

// Status describes one registered migration.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

// Runner executes and tracks migrations.
type Runner struct {
	db *gorm.DB
}

// New creates a Runner backed by db.
func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

func (r *Runner) ensureTable() error {
	if err := r.db.AutoMigrate(&migrationRecord{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) applied() (map[string]migrationRecord, error) {
	var ran []migrationRecord
	if err := r.db.Find(&ran).Error; err != nil {
		return nil, fmt.Errorf("migration: load applied: %w", err)
	}
	out := make(map[string]migrationRecord, len(ran))
	for _, rec := range ran {
		out[rec.Name] = rec
	}
	return out, nil
}

// Run applies all pending migrations as one batch and returns their names.
// Each migration and its tracking row commit together.
func (r *Runner) Run() ([]string, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}
	done, err := r.applied()
	if err != nil {
		return nil, err
	}

	batch := 1
	for _, rec := range done {
		if rec.Batch >= batch {
			batch = rec.Batch + 1
		}
	}

	var ran []string
	for _, reg := range registry {
		if _, ok := done[reg.name]; ok {
			continue
		}
		logger.Info("migration: running", "name", reg.name, "batch", batch)

		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := reg.m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&migrationRecord{Name: reg.name, Batch: batch}).Error
		})
		if err != nil {
			return ran, fmt.Errorf("migration: %s up: %w", reg.name, err)
		}
		ran = append(ran, reg.name)
	}

	logger.Info("migration: done", "ran", len(ran))
	return ran, nil
}

// Rollback reverses the most recent batch and returns the reverted names.
func (r *Runner) Rollback() ([]string, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}

	var last migrationRecord
	err := r.db.Order("batch desc").Limit(1).Find(&last).Error
	if err != nil || last.ID == 0 {
		return nil, err
	}

	var records []migrationRecord
	if err := r.db.Where("batch = ?", last.Batch).Order("id desc").Find(&records).Error; err != nil {
		return nil, err
	}

	byName := make(map[string]Migration, len(registry))
	for _, reg := range registry {
		byName[reg.name] = reg.m
	}

	var reverted []string
	for _, rec := range records {
		m, ok := byName[rec.Name]
		if !ok {
			return reverted, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		logger.Info("migration: rolling back", "name", rec.Name)

		rec := rec
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&rec).Error
		})
		if err != nil {
			return reverted, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		reverted = append(reverted, rec.Name)
	}
	return reverted, nil
}

// Status reports every registered migration in order.
func (r *Runner) Status() ([]Status, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}
	done, err := r.applied()
	if err != nil {
		return nil, err
	}

	out := make([]Status, 0, len(registry))
	for _, reg := range registry {
		rec, ok := done[reg.name]
		out = append(out, Status{Name: reg.name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}
