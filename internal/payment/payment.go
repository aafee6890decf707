// Package payment talks to the card payment gateway.
//
// The marketplace never moves money itself. It asks the gateway for a
// payment intent, hands the intent's client secret to the browser, and the
// browser confirms the card directly with the gateway.
package payment

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by Disabled. Servers started without a gateway
// key still serve everything except intent creation.
var ErrNotConfigured = errors.New("payment: gateway not configured")

//go:generate mockgen -source=payment.go -destination=../mocks/gateway.go -package=mocks

// Gateway creates payment intents. amount is in minor currency units (cents).
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string, methodTypes []string) (clientSecret string, err error)
}

// Disabled is the Gateway used when no secret key is configured.
type Disabled struct{}

func (Disabled) CreatePaymentIntent(context.Context, int64, string, []string) (string, error) {
	return "", ErrNotConfigured
}
