package api

import (
	"context"
	"net/http"

	"github.com/Veraticus/schoolpay/internal/model"
)

// CreatePayment asks the gateway for a collect request and payment link.
func (c *Client) CreatePayment(ctx context.Context, req model.PaymentRequest) (*model.PaymentLink, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var link model.PaymentLink
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/payment/create-payment",
		body:     req,
		fallback: "Failed to create payment",
	}, &link)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// PaymentCallback forwards a gateway callback payload to the API.
func (c *Client) PaymentCallback(ctx context.Context, payload model.PaymentCallback) error {
	if err := payload.Validate(); err != nil {
		return err
	}

	return c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/payment/payment-callback",
		body:     payload,
		fallback: "Failed to process payment callback",
	}, nil)
}
