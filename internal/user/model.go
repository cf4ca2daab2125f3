// File: internal/user/model.go
package user

import (
	"strings"

	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/common"
)

// User represents a rider account. Account management itself lives outside
// this service; the fields here are what notifications and the auth
// middleware need.
type User struct {
	common.BaseModel
	Email       *string `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	FirstName   *string `gorm:"type:varchar(100)" json:"first_name,omitempty"`
	LastName    *string `gorm:"type:varchar(100)" json:"last_name,omitempty"`
	FirebaseUID string  `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// DisplayName returns the user's presentable name, falling back to the email
// local part when no name is set.
func (u *User) DisplayName() string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if u.Email != nil {
		if at := strings.Index(*u.Email, "@"); at > 0 {
			return (*u.Email)[:at]
		}
	}
	return "A rider"
}
