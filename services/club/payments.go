package club

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kiwisport/clubboard/core/payment"
)

var _ payment.API = (*Client)(nil)

func (c *Client) ListPayments(ctx context.Context) ([]payment.Record, error) {
	var records []payment.Record
	if err := c.get(ctx, "/api/payments/", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) CreatePayment(ctx context.Context, rec payment.Record) (payment.Record, error) {
	var saved payment.Record
	if err := c.sendJSON(ctx, http.MethodPost, "/api/payments/", paymentPayload(rec), &saved); err != nil {
		return payment.Record{}, err
	}
	return saved, nil
}

func (c *Client) UpdatePayment(ctx context.Context, id int, rec payment.Record) (payment.Record, error) {
	var saved payment.Record
	path := fmt.Sprintf("/api/payments/%d/", id)
	if err := c.sendJSON(ctx, http.MethodPut, path, paymentPayload(rec), &saved); err != nil {
		return payment.Record{}, err
	}
	return saved, nil
}

func paymentPayload(rec payment.Record) map[string]interface{} {
	return map[string]interface{}{
		"member":    rec.Member,
		"month":     rec.Month,
		"status":    rec.Status,
		"amount":    rec.Amount,
		"assurance": rec.Assurance,
		"passport":  rec.Passport,
	}
}
