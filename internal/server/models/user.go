// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a profile keyed by phone number. PhoneNumber is unique and never
// changes; Username is unique when set.
type User struct {
	ID          string
	PhoneNumber string
	Username    *string
	Height      *float64
	AvatarKey   *string
	IsDeleted   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProfileUpdate carries the optional profile fields a user may change.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Username  *string
	Height    *float64
	AvatarKey *string
}
