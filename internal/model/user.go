package model

import "time"

const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// User represents a customer or an administrator.  A user without a
// username is a guest.  BookingIDs is append-only and filled when a
// booking is finalized.
//
// Fields:
//
//	ID           – identifier assigned by the user repository.
//	Username     – login name; empty for guests.
//	PasswordHash – bcrypt hash; empty for guests.
//	FullName     – display name.
//	Email        – contact email.
//	Phone        – contact number.
//	IsAdmin      – role flag.
//	BookingIDs   – ids of finalized bookings owned by the user.
//	CreatedAt    – creation timestamp.
type User struct {
	ID           uint64
	Username     string
	PasswordHash string
	FullName     string
	Email        string
	Phone        string
	IsAdmin      bool
	BookingIDs   []string
	CreatedAt    time.Time
}

// IsGuest reports whether the user has no credentials.
func (u User) IsGuest() bool { return u.Username == "" }

// Role maps the admin flag to the role claim used in access tokens.
func (u User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleCustomer
}
