// Package sms delivers one-time codes to phone numbers.
//
// The only provider is sms.ru's "call" API: the service places a call from a
// number whose last digits are the code, and returns those digits in the
// response.
package sms

import (
	"context"
	"errors"
)

// ErrDelivery is returned when the provider cannot be reached or refuses
// the request.
var ErrDelivery = errors.New("code delivery failed")

// CodeSender triggers delivery of a code to phone and returns the code.
type CodeSender interface {
	SendCode(ctx context.Context, phone string) (string, error)
}
