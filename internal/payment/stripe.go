package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// requestTimeout bounds a single call to the gateway.
const requestTimeout = 20 * time.Second

// StripeGateway creates payment intents through stripe-go.
//
// It holds its own client.API rather than setting the package-level
// stripe.Key, so tests can run several gateways against httptest servers
// side by side.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway returns a gateway for secretKey. An empty baseURL means
// Stripe's production API; tests point it at an httptest server.
func NewStripeGateway(secretKey, baseURL string) *StripeGateway {
	cfg := &stripe.BackendConfig{
		HTTPClient: &http.Client{Timeout: requestTimeout},
		// We never retry: a retried intent is a second charge attempt.
		MaxNetworkRetries: stripe.Int64(0),
		// Failures come back as errors and are logged by the caller.
		LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelNull},
	}
	if baseURL != "" {
		cfg.URL = stripe.String(baseURL)
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)
	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	return &StripeGateway{api: api}
}

// CreatePaymentIntent creates an intent and returns its client secret.
//
// Each call carries a fresh Idempotency-Key. We never retry, so the key only
// guards against a proxy replaying the request.
func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amount int64, currency string, methodTypes []string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice(methodTypes),
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) {
			return "", fmt.Errorf("payment: gateway returned %d (%s): %s: %w", se.HTTPStatusCode, se.Type, se.Msg, err)
		}
		return "", fmt.Errorf("payment: creating intent: %w", err)
	}
	if intent.ClientSecret == "" {
		return "", fmt.Errorf("payment: intent %s has no client secret", intent.ID)
	}
	return intent.ClientSecret, nil
}
