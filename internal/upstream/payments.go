package upstream

import (
	"context"
	"fmt"
	"net/http"
)

type createPaymentRequest struct {
	BookingID int64 `json:"bookingId"`
}

type createPaymentResponse struct {
	RedirectURL string `json:"redirectUrl"`
}

// CreatePayment asks the backend to open a payment for the booking and
// returns the provider's redirect URL. The contract has exactly one
// response shape; a response without redirectUrl is a backend error, not
// something to probe around.
func (c *Client) CreatePayment(ctx context.Context, bookingID int64) (string, error) {
	var resp createPaymentResponse
	err := c.do(ctx, "payments.create", http.MethodPost, "/payments/new",
		createPaymentRequest{BookingID: bookingID}, &resp, http.StatusOK)
	if err != nil {
		return "", err
	}
	if resp.RedirectURL == "" {
		return "", fmt.Errorf("%w: payment response missing redirectUrl", ErrMalformedResponse)
	}
	return resp.RedirectURL, nil
}
