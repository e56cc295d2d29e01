package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// NewGorm returns the SQL repositories over db.
func NewGorm(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:    &gormUsers{db: db},
		Products: &gormProducts{db: db},
		Orders:   &gormOrders{db: db},
	}
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return ErrDuplicate
	}
	return err
}

// isUniqueViolation matches the unique-constraint messages of the supported
// SQL drivers when gorm has not translated them.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
