package services

import (
	"errors"

	"github.com/dmitrijs2005/healthtracker/internal/server/sms"
)

// Domain errors returned by the services. Transport layers translate them
// with errors.Is; wrapped causes are for logs only.
var (
	ErrInvalidCode      = errors.New("invalid code")
	ErrDelivery         = sms.ErrDelivery
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrNoData           = errors.New("no measurement data supplied")
	ErrInvalidKind      = errors.New("invalid measurement kind")
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFollowing     = errors.New("not following")
)
