package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a closed capability tag on a user record. Drivers are plain users
// carrying an optional driver profile, not a separate entity.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDriver Role = "driver"
)

// IsValidRole checks if a role is one of the closed set.
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleDriver:
		return true
	default:
		return false
	}
}

// DriverProfile is the driver-specific payload attached to a user acting as
// a driver.
type DriverProfile struct {
	FullName  string `bson:"full_name" json:"full_name"`
	LicenseNo string `bson:"license_no" json:"license_no"`
}

// User represents an account known to the dispatcher. Authentication and
// session issuance happen outside this system; the core only needs the
// acting identity.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Role      Role               `bson:"role" json:"role"`
	Driver    *DriverProfile     `bson:"driver,omitempty" json:"driver,omitempty"`
	IsActive  bool               `bson:"is_active" json:"is_active"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Claims is the identity extracted from a dispatcher-issued bearer token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Exp      int64  `json:"exp"`
}
