package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/UnknownOlympus/verdeando/internal/models"
)

const (
	endpointLogin   = "auth.login"
	endpointGetUser = "usuarios.get"
)

// Login authenticates with email and password and returns the user carrying its access token.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.User, error) {
	req, err := jsonRequest(endpointLogin, http.MethodPost, "/auth/login", "", creds)
	if err != nil {
		return models.User{}, err
	}

	return decode(ctx, c, req, func(w loginWire) (models.User, error) {
		if w.User == nil || w.Token == nil || w.Token.AccessToken == "" {
			return models.User{}, malformed(endpointLogin, "login response without user or access token")
		}

		user, err := w.User.toModel(endpointLogin)
		if err != nil {
			return models.User{}, err
		}
		user.Token = w.Token.AccessToken

		return user, nil
	})
}

// GetUser fetches the current record of a user, including its point balance.
// The returned user carries no token.
func (c *Client) GetUser(ctx context.Context, token, userID string) (models.User, error) {
	req := request{
		endpoint: endpointGetUser,
		method:   http.MethodGet,
		path:     "/usuarios/" + url.PathEscape(userID),
		token:    token,
	}

	return decode(ctx, c, req, func(w userWire) (models.User, error) {
		return w.toModel(endpointGetUser)
	})
}
