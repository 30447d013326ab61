package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleCustomer UserRole = "user"
	UserRoleAdmin    UserRole = "admin"
	UserRoleKitchen  UserRole = "kitchen"
	UserRoleRider    UserRole = "rider"
)

// User is read-only here. Accounts are managed by the storefront.
type User struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	Role      UserRole
	CreatedAt time.Time
	UpdatedAt time.Time
}
