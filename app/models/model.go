// Package models holds the storefront entities. Every entity carries json,
// bson and gorm tags so the SQL and MongoDB stores share one definition.
package models

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a fresh entity id.
func NewID() string { return uuid.NewString() }

// NewOrderNumber returns a human-friendly order reference like ORD-9F2C11AB.
func NewOrderNumber() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
