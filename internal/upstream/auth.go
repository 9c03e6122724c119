package upstream

import (
	"context"
	"net/http"

	"courtbook/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	User models.User `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, "auth.login", http.MethodPost, "/auth/login",
		loginRequest{Email: email, Password: password}, &resp, http.StatusOK)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", ErrMalformedResponse
	}
	return resp.Token, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	var resp registerResponse
	err := c.do(ctx, "auth.register", http.MethodPost, "/auth/register",
		registerRequest{Name: name, Email: email, Password: password}, &resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}
