package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProcessor charges cards through Stripe PaymentIntents.
type StripeProcessor struct {
	client *client.API
}

// Ensure StripeProcessor implements CardProcessor.
var _ CardProcessor = (*StripeProcessor)(nil)

// NewStripeProcessor creates a new StripeProcessor with the given secret key.
func NewStripeProcessor(secretKey string) *StripeProcessor {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &StripeProcessor{client: sc}
}

// Charge creates and confirms a PaymentIntent for the amount in the default
// currency. Amounts are converted to the smallest currency unit.
func (p *StripeProcessor) Charge(ctx context.Context, amount float64, description string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(int64(amount * 100)),
		Currency:    stripe.String(string(stripe.CurrencyGBP)),
		Description: stripe.String(description),
		Confirm:     stripe.Bool(true),
	}
	params.Context = ctx

	pi, err := p.client.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return "", fmt.Errorf("payment intent %s not captured: status %s", pi.ID, pi.Status)
	}

	return pi.ID, nil
}

// Refund refunds the given amount against a previously captured charge.
func (p *StripeProcessor) Refund(ctx context.Context, transactionID string, amount float64) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(transactionID),
		Amount:        stripe.Int64(int64(amount * 100)),
	}
	params.Context = ctx

	refund, err := p.client.Refunds.New(params)
	if err != nil {
		return fmt.Errorf("failed to create refund: %w", err)
	}

	if refund.Status == stripe.RefundStatusFailed {
		return fmt.Errorf("refund %s failed: %s", refund.ID, refund.FailureReason)
	}

	return nil
}
