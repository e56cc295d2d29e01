package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopease/pkg/auth"
)

// User is a customer or administrator account.
type User struct {
	ID        string    `gorm:"primaryKey;size:36"            json:"_id"       bson:"_id"`
	Name      string    `gorm:"size:255;not null"             json:"name"      bson:"name"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"     bson:"email"`
	Password  string    `gorm:"size:255;not null"             json:"-"         bson:"password"` // bcrypt hash
	IsAdmin   bool      `gorm:"not null;default:false"        json:"isAdmin"   bson:"isAdmin"`
	CreatedAt time.Time `                                     json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `                                     json:"updatedAt" bson:"updatedAt"`
}

// Role maps IsAdmin onto the token role.
func (u *User) Role() string {
	if u.IsAdmin {
		return auth.RoleAdmin
	}
	return auth.RoleCustomer
}

// Summary is the projection embedded in admin order listings.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Prepare fills the id of a user about to be inserted.
func (u *User) Prepare() {
	if u.ID == "" {
		u.ID = NewID()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error {
	u.Prepare()
	return nil
}

// UserSummary is the public {_id, name, email} view of a user.
type UserSummary struct {
	ID    string `json:"_id"   bson:"_id"`
	Name  string `json:"name"  bson:"name"`
	Email string `json:"email" bson:"email"`
}
